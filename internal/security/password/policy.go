package password

import (
	"errors"
	"strings"
)

const (
	MinLen = 8
	MaxLen = 128
)

var (
	ErrTooShort = errors.New("weak_password.length")
	ErrTooLong  = errors.New("password_too_long")
)

// Validate trims the password and enforces the length bounds.
func Validate(pwd string) (string, error) {
	trimmed := strings.TrimSpace(pwd)
	switch {
	case len(trimmed) < MinLen:
		return trimmed, ErrTooShort
	case len(trimmed) > MaxLen:
		return trimmed, ErrTooLong
	}
	return trimmed, nil
}
