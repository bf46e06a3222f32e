package suite

import (
	"net/http"
	"strings"

	"github.com/getmockd/litrest/internal/matching"
)

// DefaultVersion is the suite file format version written by `litrest new`.
const DefaultVersion = "1"

// Suite is a set of literate REST cases sharing a base URL and headers.
type Suite struct {
	// Version is the suite file format version.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Name is the suite title used as the top-level markdown heading.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Description is markdown placed under the suite heading.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Setup holds setup notes (fixtures, auth, seed data) for the docs.
	Setup string `yaml:"setup,omitempty" json:"setup,omitempty"`

	// BaseURL is prepended to relative case URLs.
	BaseURL string `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`

	// Headers are sent with every case. Case headers override them.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Cases run in order.
	Cases []*Case `yaml:"cases" json:"cases"`

	// Source is the file the suite was loaded from, if any.
	Source string `yaml:"-" json:"-"`
}

// Case is a single request with its documentation and expected response.
type Case struct {
	// Name identifies the case. CamelCase or snake_case; it becomes the
	// markdown title and the Go subtest name.
	Name string `yaml:"name" json:"name"`

	// Description is the docstring. Its first line becomes the subtitle.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Method is the HTTP method. Defaults to GET.
	Method string `yaml:"method,omitempty" json:"method,omitempty"`

	// URL is absolute or relative to the suite BaseURL.
	URL string `yaml:"url" json:"url"`

	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Data is the example payload. For methods without a body a mapping is
	// sent as the query string; otherwise it is sent as a JSON body.
	Data any `yaml:"data,omitempty" json:"data,omitempty"`

	Expect Expectation `yaml:"expect" json:"expect"`

	// Skip, when set, is the reason the case is documented but not run.
	Skip string `yaml:"skip,omitempty" json:"skip,omitempty"`
}

// Expectation describes the response a case expects.
type Expectation struct {
	// Status is the expected status code.
	Status int `yaml:"status" json:"status"`

	// Body is a partial structure the decoded response body must contain.
	Body any `yaml:"body,omitempty" json:"body,omitempty"`

	// Paths maps JSONPath expressions to expected values or {exists: bool}.
	Paths map[string]any `yaml:"paths,omitempty" json:"paths,omitempty"`

	// Headers must be present with exactly these values.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Assert lists boolean expressions over the response.
	Assert []string `yaml:"assert,omitempty" json:"assert,omitempty"`

	// Matchers decoded from a suite file in document key order.
	body  *matching.Matcher
	paths map[string]*matching.Matcher
}

// validHTTPMethods are the allowed HTTP methods.
var validHTTPMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// bodylessMethods send Data as a query string.
var bodylessMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// HTTPMethod returns the upper-cased method, defaulting to GET.
func (c *Case) HTTPMethod() string {
	if c.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(c.Method)
}

// Skipped reports whether the case should not be executed.
func (c *Case) Skipped() bool {
	return c.Skip != ""
}

// HasBodyExpectation reports whether the case checks the response body.
func (c *Case) HasBodyExpectation() bool {
	return c.Expect.Body != nil
}

// Find returns the case with the given name.
func (s *Suite) Find(name string) (*Case, bool) {
	for _, c := range s.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *Suite) applyDefaults() {
	if s.Version == "" {
		s.Version = DefaultVersion
	}
	for _, c := range s.Cases {
		if c == nil {
			continue
		}
		c.Method = c.HTTPMethod()
	}
}
