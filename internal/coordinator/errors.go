package coordinator

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable class of a coordinator failure.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindUserNotFound Kind = "user_not_found"
	KindBookNotFound Kind = "book_not_found"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindStoreFault   Kind = "store_fault"
)

// Error is returned by every coordinator operation. Partial is set when an
// earlier store write committed before a later one failed; nothing was rolled back.
type Error struct {
	Kind    Kind
	Detail  string
	Partial bool
	cause   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Partial {
		msg += " (partial)"
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same Kind, so errors.Is(err, ErrConflict) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrUserNotFound = &Error{Kind: KindUserNotFound}
	ErrBookNotFound = &Error{Kind: KindBookNotFound}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrStoreFault   = &Error{Kind: KindStoreFault}
)

func fail(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}

func partial(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Partial: true, cause: cause}
}

// KindOf reports the Kind of err; errors from outside the coordinator are store faults.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFault
}

// IsPartial reports whether err left the two stores out of step.
func IsPartial(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Partial
}
