package matching

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	ErrUnsupportedType = errors.New("unsupported comparison type")
	ErrNoMatch         = errors.New("value does not match expectation")
	ErrNumberRange     = errors.New("number out of range")
)

// UnsupportedTypeError is returned when an expected value is neither a
// terminal, a list nor a string-keyed mapping.
type UnsupportedTypeError struct {
	// Value is the offending value.
	Value any
	// Type is the Go type name of Value.
	Type string
	// Path locates Value inside the expected structure, e.g. "$.items[0]".
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported comparison type at %s: %v (%s)", e.Path, e.Value, e.Type)
}

// Unwrap allows errors.Is(err, ErrUnsupportedType).
func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// NumberRangeError is returned when an expected number does not fit in a
// float64.
type NumberRangeError struct {
	// Value is the number as written.
	Value string
	// Path locates Value inside the expected structure.
	Path string
}

func (e *NumberRangeError) Error() string {
	return fmt.Sprintf("number out of range at %s: %s does not fit in a float64", e.Path, e.Value)
}

// Unwrap allows errors.Is(err, ErrNumberRange).
func (e *NumberRangeError) Unwrap() error {
	return ErrNumberRange
}

// MatchFailure carries the Trail of a failed match.
type MatchFailure struct {
	Trail []string
}

func (e *MatchFailure) Error() string {
	if len(e.Trail) == 0 {
		return ErrNoMatch.Error()
	}
	return strings.Join(e.Trail, ": ")
}

// Unwrap allows errors.Is(err, ErrNoMatch).
func (e *MatchFailure) Unwrap() error {
	return ErrNoMatch
}
