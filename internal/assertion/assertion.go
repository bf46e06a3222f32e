// Package assertion compiles boolean expressions evaluated against an HTTP
// response, e.g. `status == 201 && body.id > 0`.
//
// Expressions see the following variables:
//
//   - status: the response status code
//   - headers: response headers keyed by canonical name, first value only
//   - body: the decoded JSON body, or nil when the body is not JSON
//   - text: the raw body as a string
//   - durationMs: request round-trip time in milliseconds
package assertion

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrFalse is wrapped by the error Check returns when an expression
// evaluates to false.
var ErrFalse = errors.New("assertion evaluated to false")

// Response is the data an assertion is evaluated against.
type Response struct {
	Status   int
	Headers  http.Header
	Body     any
	Text     string
	Duration time.Duration
}

// Assertion is a compiled expression.
type Assertion struct {
	Source  string
	program *vm.Program
}

// Compile type-checks src and requires it to produce a boolean.
func Compile(src string) (*Assertion, error) {
	program, err := expr.Compile(src, expr.Env(env(Response{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &Assertion{Source: src, program: program}, nil
}

// Eval runs the assertion against resp.
func (a *Assertion) Eval(resp Response) (bool, error) {
	out, err := expr.Run(a.program, env(resp))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", a.Source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("eval %q: result %v is not a boolean", a.Source, out)
	}
	return ok, nil
}

// Check is Eval with a false result turned into an error wrapping ErrFalse.
func (a *Assertion) Check(resp Response) error {
	ok, err := a.Eval(resp)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFalse, a.Source)
	}
	return nil
}

func env(resp Response) map[string]any {
	headers := make(map[string]string, len(resp.Headers))
	for k, v := range resp.Headers {
		if len(v) > 0 {
			headers[http.CanonicalHeaderKey(k)] = v[0]
		}
	}
	return map[string]any{
		"status":     resp.Status,
		"headers":    headers,
		"body":       resp.Body,
		"text":       resp.Text,
		"durationMs": resp.Duration.Milliseconds(),
	}
}
