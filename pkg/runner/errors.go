package runner

import (
	"fmt"
	"strings"
)

// maxExcerpt bounds the response body quoted in a StatusError.
const maxExcerpt = 512

// StatusError reports an unexpected status code.
type StatusError struct {
	Expected int
	Actual   int
	// Body is an excerpt of the response body.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("expected status %d but received %d", e.Expected, e.Actual)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// HeaderError reports a missing or different response header.
type HeaderError struct {
	Name     string
	Expected string
	Actual   string
	Missing  bool
}

func (e *HeaderError) Error() string {
	if e.Missing {
		return fmt.Sprintf("header %s: expected %q but it was not present", e.Name, e.Expected)
	}
	return fmt.Sprintf("header %s: expected %q but received %q", e.Name, e.Expected, e.Actual)
}

// DecodeError reports a response body that is not JSON while the case
// expects structure.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("response body is not JSON (Content-Type %q): %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AssertionError reports a failed or invalid assertion expression.
type AssertionError struct {
	Expression string
	Err        error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assert %q: %v", e.Expression, e.Err)
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxExcerpt {
		return s[:maxExcerpt] + "..."
	}
	return s
}
