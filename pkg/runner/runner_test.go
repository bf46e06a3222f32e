package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/getmockd/litrest/internal/assertion"
	"github.com/getmockd/litrest/internal/matching"
	"github.com/getmockd/litrest/pkg/suite"
)

func samplesServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/samples", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get(RequestIDHeader) == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Api", "v1")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 7, "brand_name": "Pennzoil", "tags": ["a", "b"]}`)
	})
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"query": %q, "auth": %q}`, r.URL.RawQuery, r.Header.Get("Authorization"))
	})
	mux.HandleFunc("GET /api/html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"user": "luna"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createCase() *suite.Case {
	return &suite.Case{
		Name:   "CreateSample",
		Method: "POST",
		URL:    "/samples",
		Data:   map[string]any{"brand_name": "Pennzoil"},
		Expect: suite.Expectation{
			Status:  201,
			Headers: map[string]string{"x-api": "v1"},
			Body:    map[string]any{"brand_name": "Pennzoil", "tags": []any{"b"}},
			Paths: map[string]any{
				"$.id":      7,
				"$.missing": map[string]any{"exists": false},
			},
			Assert: []string{"body.id == 7", "status == 201"},
		},
	}
}

func TestRunCasePasses(t *testing.T) {
	srv := samplesServer(t)
	s := &suite.Suite{Name: "Samples", BaseURL: srv.URL + "/api"}

	res := New().RunCase(context.Background(), s, createCase())
	require.NoError(t, res.Err)
	assert.Equal(t, Passed, res.Outcome)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, srv.URL+"/api/samples", res.URL)
	assert.NotEmpty(t, res.RequestID)
}

func TestRunCaseFailures(t *testing.T) {
	srv := samplesServer(t)
	s := &suite.Suite{BaseURL: srv.URL + "/api"}

	t.Run("status", func(t *testing.T) {
		c := createCase()
		c.Expect.Status = 200
		res := New().RunCase(context.Background(), s, c)
		assert.Equal(t, Failed, res.Outcome)
		var se *StatusError
		require.True(t, errors.As(res.Err, &se))
		assert.Equal(t, 201, se.Actual)
		assert.Contains(t, se.Body, "Pennzoil")
	})

	t.Run("header", func(t *testing.T) {
		c := createCase()
		c.Expect.Headers = map[string]string{"X-Missing": "yes"}
		res := New().RunCase(context.Background(), s, c)
		var he *HeaderError
		require.True(t, errors.As(res.Err, &he))
		assert.True(t, he.Missing)
	})

	t.Run("body", func(t *testing.T) {
		c := createCase()
		c.Expect.Body = map[string]any{"brand_name": "Shell"}
		res := New().RunCase(context.Background(), s, c)
		var mf *matching.MatchFailure
		require.True(t, errors.As(res.Err, &mf))
		assert.Equal(t, []string{
			"In dict",
			"For key brand_name",
			`Expected "Shell" but received "Pennzoil"`,
		}, mf.Trail)
	})

	t.Run("path", func(t *testing.T) {
		c := createCase()
		c.Expect.Paths = map[string]any{"$.id": 8}
		res := New().RunCase(context.Background(), s, c)
		assert.True(t, errors.Is(res.Err, matching.ErrNoMatch))
		assert.Equal(t, "At path $.id: Expected 8 but received 7", res.Message)
	})

	t.Run("assertion", func(t *testing.T) {
		c := createCase()
		c.Expect.Assert = []string{"body.id > 100"}
		res := New().RunCase(context.Background(), s, c)
		var ae *AssertionError
		require.True(t, errors.As(res.Err, &ae))
		assert.True(t, errors.Is(res.Err, assertion.ErrFalse))
	})

	t.Run("not json", func(t *testing.T) {
		c := &suite.Case{Name: "Html", URL: "/html", Expect: suite.Expectation{Status: 200, Body: map[string]any{"a": 1}}}
		res := New().RunCase(context.Background(), s, c)
		var de *DecodeError
		require.True(t, errors.As(res.Err, &de))
		assert.Equal(t, "text/html", de.ContentType)
	})

	t.Run("unreachable", func(t *testing.T) {
		c := &suite.Case{Name: "Down", URL: "http://127.0.0.1:1/x", Expect: suite.Expectation{Status: 200}}
		res := New(WithTimeout(time.Second)).RunCase(context.Background(), s, c)
		assert.Equal(t, Failed, res.Outcome)
		assert.ErrorContains(t, res.Err, "request failed")
	})
}

func TestRunCaseQueryAndHeaders(t *testing.T) {
	srv := samplesServer(t)
	s := &suite.Suite{BaseURL: "http://unused.invalid", Headers: map[string]string{"Authorization": "Token suite"}}
	c := &suite.Case{
		Name: "Search",
		URL:  "/search",
		Data: map[string]any{"q": "oil", "page": 2},
		Expect: suite.Expectation{
			Status: 200,
			Body:   map[string]any{"query": "page=2&q=oil", "auth": "Token cli"},
		},
	}

	r := New(WithBaseURL(srv.URL+"/api"), WithHeaders(map[string]string{"Authorization": "Token cli"}))
	res := r.RunCase(context.Background(), s, c)
	require.NoError(t, res.Err)
}

func TestRunSuiteSharesCookies(t *testing.T) {
	srv := samplesServer(t)
	s := &suite.Suite{
		Name:    "Session",
		BaseURL: srv.URL + "/api",
		Cases: []*suite.Case{
			{Name: "Login", Method: "POST", URL: "/login", Expect: suite.Expectation{Status: 204}},
			{Name: "Me", URL: "/me", Expect: suite.Expectation{Status: 200, Body: map[string]any{"user": "luna"}}},
			{Name: "Later", URL: "/me", Skip: "not ready", Expect: suite.Expectation{Status: 200}},
		},
	}

	results := New().RunSuite(context.Background(), s)
	require.Len(t, results, 3)
	assert.Equal(t, Passed, results[0].Outcome)
	assert.Equal(t, Passed, results[1].Outcome, "session cookie from Login is sent")
	assert.Equal(t, Skipped, results[2].Outcome)
	assert.Equal(t, "not ready", results[2].SkipReason)
}

func okDoer(delay time.Duration, inFlight, peak *int64) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt64(inFlight, 1)
		defer atomic.AddInt64(inFlight, -1)
		for {
			p := atomic.LoadInt64(peak)
			if n <= p || atomic.CompareAndSwapInt64(peak, p, n) {
				break
			}
		}
		time.Sleep(delay)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"ok": true}`)),
		}, nil
	})
}

func TestRunBoundsParallelism(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var inFlight, peak int64
	var suites []*suite.Suite
	for i := range 8 {
		suites = append(suites, &suite.Suite{
			Name:    fmt.Sprintf("s%d", i),
			BaseURL: "http://example.test",
			Cases: []*suite.Case{
				{Name: "A", URL: "/a", Expect: suite.Expectation{Status: 200, Body: map[string]any{"ok": true}}},
				{Name: "B", URL: "/b", Expect: suite.Expectation{Status: 200}},
			},
		})
	}

	r := New(WithDoer(okDoer(5*time.Millisecond, &inFlight, &peak)), WithParallelism(2))
	report, err := r.Run(context.Background(), suites)
	require.NoError(t, err)

	assert.False(t, report.Failed())
	assert.Equal(t, Summary{Total: 16, Passed: 16}, report.Summary)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
	assert.Equal(t, "s0", report.Results[0].Suite)
	assert.Equal(t, "s7", report.Results[15].Suite)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var inFlight, peak int64
	s := &suite.Suite{BaseURL: "http://example.test", Cases: []*suite.Case{
		{Name: "A", URL: "/a", Expect: suite.Expectation{Status: 200}},
	}}

	report, err := New(WithDoer(okDoer(0, &inFlight, &peak))).Run(ctx, []*suite.Suite{s})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Failed())
	assert.Zero(t, atomic.LoadInt64(&peak), "no request is sent")
}

func TestReportFailures(t *testing.T) {
	report := &Report{}
	report.Add(
		&Result{Case: "a", Outcome: Passed},
		(&Result{Case: "b"}).fail(errors.New("boom")),
		&Result{Case: "c", Outcome: Skipped},
	)
	assert.Equal(t, Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, report.Summary)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, "boom", report.Failures()[0].Message)
}

func TestCheckReportsKeysInDocumentOrder(t *testing.T) {
	s, err := suite.LoadBytes([]byte(`
name: Order
baseUrl: http://h
cases:
  - name: Body
    url: /x
    expect:
      status: 200
      body:
        zeta: 1
        alpha: 1
  - name: Paths
    url: /x
    expect:
      status: 200
      paths:
        $.a:
          zeta: 1
          alpha: 1
`), "order.yaml")
	require.NoError(t, err)
	require.Empty(t, suite.Validate(s))

	resp := &http.Response{StatusCode: 200, Header: http.Header{}}

	err = Check(s.Cases[0], resp, []byte(`{}`), 0)
	require.Error(t, err)
	assert.Equal(t, "In dict: For key zeta: Key was not present", err.Error())

	err = Check(s.Cases[1], resp, []byte(`{"a": {}}`), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "At path $.a")
	assert.Contains(t, err.Error(), "For key zeta")
	assert.NotContains(t, err.Error(), "For key alpha")
}
