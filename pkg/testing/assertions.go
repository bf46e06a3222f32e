package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/getmockd/litrest/internal/matching"
)

// AssertMatches reports a test error when actual does not contain the
// expected structure. It returns whether the match succeeded.
func AssertMatches(t testing.TB, expected, actual any) bool {
	t.Helper()

	err := matching.AssertMatches(expected, actual)
	if err == nil {
		return true
	}
	reportMatchError(t, err)
	return false
}

// AssertJSONMatches decodes body as JSON and matches it against expected.
// A string or []byte expected value is parsed as JSON, keeping its key
// order in the trail.
func AssertJSONMatches(t testing.TB, expected any, body []byte) bool {
	t.Helper()

	var actual any
	if err := json.Unmarshal(body, &actual); err != nil {
		t.Errorf("body is not valid JSON: %v\nbody: %s", err, body)
		return false
	}

	var m *matching.Matcher
	var err error
	switch v := expected.(type) {
	case string:
		m, err = matching.ParseJSON([]byte(v))
	case []byte:
		m, err = matching.ParseJSON(v)
	default:
		m, err = matching.New(expected)
	}
	if err != nil {
		t.Errorf("invalid expectation: %v", err)
		return false
	}

	if err := m.Assert(actual); err != nil {
		reportMatchError(t, err)
		return false
	}
	return true
}

func reportMatchError(t testing.TB, err error) {
	t.Helper()

	var mf *matching.MatchFailure
	if errors.As(err, &mf) {
		t.Errorf("value does not match expectation:\n  %s", strings.Join(mf.Trail, "\n  "))
		return
	}
	t.Errorf("invalid expectation: %v", err)
}

// RequestLog is a request received by a StubServer.
type RequestLog struct {
	Method string
	Path   string
	// Headers holds the first value of each header.
	Headers     map[string]string
	Body        string
	QueryString string
}

// AssertJSONBody asserts that the request body contains the expected
// structure.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) {
	t.Helper()
	AssertJSONMatches(t, expected, []byte(r.Body))
}

// AssertBodyContains asserts that the request body contains substr.
func (r *RequestLog) AssertBodyContains(t testing.TB, substr string) {
	t.Helper()

	if !strings.Contains(r.Body, substr) {
		t.Errorf("request body does not contain %q\nbody: %s", substr, r.Body)
	}
}

// AssertHeader asserts that the request had header key with the expected
// value. Header names are compared case-insensitively.
func (r *RequestLog) AssertHeader(t testing.TB, key, expected string) {
	t.Helper()

	actual, ok := r.header(key)
	if !ok {
		t.Errorf("request does not have header %q", key)
		return
	}
	if actual != expected {
		t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

func (r *RequestLog) header(key string) (string, bool) {
	if v, ok := r.Headers[key]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// AssertQueryParam asserts that the request had query parameter key with
// the expected value.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) {
	t.Helper()

	values, err := url.ParseQuery(r.QueryString)
	if err != nil {
		t.Errorf("invalid query string %q: %v", r.QueryString, err)
		return
	}
	if !values.Has(key) {
		t.Errorf("request does not have query param %q", key)
		return
	}
	if actual := values.Get(key); actual != expected {
		t.Errorf("query param %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

func (r *RequestLog) String() string {
	if r.QueryString == "" {
		return fmt.Sprintf("%s %s", r.Method, r.Path)
	}
	return fmt.Sprintf("%s %s?%s", r.Method, r.Path, r.QueryString)
}
