package models

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceRe = regexp.MustCompile(`\s+`)

// SanitizeString folds compatibility forms, drops NULs and collapses whitespace.
func SanitizeString(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\x00", "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeISBN keeps hyphens as given; only width and surrounding space are folded,
// so "９７８-０" and "978-0" key the same row.
func NormalizeISBN(s string) string {
	return strings.ReplaceAll(SanitizeString(s), " ", "")
}
