package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrEmptyCategory = errors.New("empty category")
	ErrLabelTooLong  = errors.New("label too long (max 200 characters)")

	// ErrParse marks a stored field that could not be decoded.
	ErrParse = errors.New("parse error")
	// ErrNotFound is returned when an id does not match any record.
	ErrNotFound = errors.New("record not found")
	// ErrCorruptData wraps the row errors of a partially readable store.
	ErrCorruptData = errors.New("corrupt data")
	// ErrStoreUnavailable is returned when a store cannot be read at all.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ParseError describes one stored field that failed to decode.
type ParseError struct {
	Domain string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: bad %s %q: %v", e.Domain, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// CorruptError joins row errors under ErrCorruptData.
func CorruptError(domain string, rowErrs []error) error {
	if len(rowErrs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", domain, ErrCorruptData, errors.Join(rowErrs...))
}

// IsInputError reports whether err comes from validating user input.
func IsInputError(err error) bool {
	for _, target := range []error{ErrInvalidDate, ErrInvalidAmount, ErrInvalidKind, ErrEmptyCategory, ErrLabelTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
