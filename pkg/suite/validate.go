package suite

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/getmockd/litrest/internal/assertion"
	"github.com/getmockd/litrest/internal/matching"
)

// ValidationError describes one problem with a suite.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ValidateOption configures Validate.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	baseURL string
}

// WithBaseURL resolves relative case URLs against base instead of the
// suite's baseUrl. An empty base keeps the suite's own.
func WithBaseURL(base string) ValidateOption {
	return func(c *validateConfig) {
		c.baseURL = base
	}
}

// Validate checks the semantic rules a schema cannot express. It returns
// every problem found rather than stopping at the first.
func Validate(s *Suite, opts ...ValidateOption) []*ValidationError {
	var cfg validateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	baseURL := cmp.Or(cfg.baseURL, s.BaseURL)

	var errs []*ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(s.Cases) == 0 {
		add("cases", "at least one case is required")
	}

	names := make(map[string]int)
	for i, c := range s.Cases {
		field := fmt.Sprintf("cases[%d]", i)
		if c == nil {
			add(field, "case is empty")
			continue
		}
		if c.Name != "" {
			field = fmt.Sprintf("cases[%d](%s)", i, c.Name)
		}

		if strings.TrimSpace(c.Name) == "" {
			add(field+".name", "name is required")
		} else if prev, dup := names[c.Name]; dup {
			add(field+".name", "duplicate name, first used by cases[%d]", prev)
		} else {
			names[c.Name] = i
		}

		if !validHTTPMethods[c.HTTPMethod()] {
			add(field+".method", "unsupported method %q", c.Method)
		}

		if _, err := c.RequestURL(baseURL); err != nil {
			add(field+".url", "%v", err)
		}
		if _, err := c.Body(); err != nil {
			add(field+".data", "%v", err)
		}

		if c.Expect.Status < 100 || c.Expect.Status > 599 {
			add(field+".expect.status", "status %d is not a valid HTTP status", c.Expect.Status)
		}
		if c.Expect.Body != nil {
			if _, err := c.Expect.BodyMatcher(); err != nil {
				add(field+".expect.body", "%v", err)
			}
		}
		paths := slices.Sorted(maps.Keys(c.Expect.Paths))
		for _, path := range paths {
			if err := matching.ValidateJSONPathExpression(path); err != nil {
				add(field+".expect.paths", "%v", err)
				continue
			}
			if _, err := matching.New(c.Expect.Paths[path]); err != nil {
				add(field+".expect.paths["+path+"]", "%v", err)
			}
		}
		for j, src := range c.Expect.Assert {
			if _, err := assertion.Compile(src); err != nil {
				add(fmt.Sprintf("%s.expect.assert[%d]", field, j), "%v", err)
			}
		}
	}
	return errs
}
