package team

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest team name accepted, in runes.
const MaxNameLength = 32

var ErrInvalidName = errors.New("invalid team name")

// ID identifies a team within one game. It is the normalized form of the
// team's name, so "  Red " and "red" share an ID.
type ID string

// Sanitize normalizes a raw team name and returns its identity and the
// display name to show players.
func Sanitize(raw string) (ID, string, error) {
	display := Normalize(raw)
	if display == "" {
		return "", "", ErrInvalidName
	}
	n := 0
	for _, r := range display {
		n++
		if !allowedRune(r) {
			return "", "", ErrInvalidName
		}
	}
	if n > MaxNameLength {
		return "", "", ErrInvalidName
	}
	return ID(Fold(display)), display, nil
}

// Normalize applies NFKC, trims the string and collapses inner whitespace
// runs to a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// Fold returns the caseless form of an already normalized string.
func Fold(s string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(s)
}

func allowedRune(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return true
	case r == ' ', r == '-', r == '_', r == '\'', r == '.':
		return true
	}
	return false
}
