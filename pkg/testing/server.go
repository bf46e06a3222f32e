package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// StubServer is an HTTP server answering with canned responses, for running
// suites when the real API is unavailable.
type StubServer struct {
	t       testing.TB
	httpSrv *httptest.Server

	mu       sync.Mutex
	stubs    []*stub
	requests []RequestLog
}

type stub struct {
	method     string
	path       string
	query      map[string]string
	reqHeaders map[string]string
	status     int
	headers    map[string]string
	body       []byte
	delay      time.Duration
	remaining  int // -1 means unlimited
}

// NewStubServer starts a stub server. It is closed when the test ends.
func NewStubServer(t testing.TB) *StubServer {
	t.Helper()

	s := &StubServer{t: t}
	s.httpSrv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Stop)
	return s
}

// URL returns the base URL of the server.
func (s *StubServer) URL() string {
	return s.httpSrv.URL
}

// Client returns a client configured for the server.
func (s *StubServer) Client() *http.Client {
	return s.httpSrv.Client()
}

// Stop closes the server. It is safe to call more than once.
func (s *StubServer) Stop() {
	s.httpSrv.Close()
}

// Stub adds an endpoint and returns a builder for its response. Path
// segments written as {name} match any value.
//
//	stub.Stub("GET", "/samples/{id}").
//	    WithJSON(map[string]any{"id": 3}).
//	    Reply()
func (s *StubServer) Stub(method, path string) *StubBuilder {
	return &StubBuilder{
		server: s,
		stub: &stub{
			method:    strings.ToUpper(method),
			path:      path,
			status:    http.StatusOK,
			headers:   make(map[string]string),
			remaining: -1,
		},
	}
}

// Reset removes all stubs and recorded requests.
func (s *StubServer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = nil
	s.requests = nil
}

// Requests returns the received requests in arrival order.
func (s *StubServer) Requests() []RequestLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RequestLog, len(s.requests))
	copy(out, s.requests)
	return out
}

// AssertCalled asserts that an endpoint was called at least once.
func (s *StubServer) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if s.countCalls(method, path) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (s *StubServer) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	if count := s.countCalls(method, path); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (s *StubServer) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	if count := s.countCalls(method, path); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

func (s *StubServer) countCalls(method, path string) int {
	count := 0
	for _, r := range s.Requests() {
		if strings.EqualFold(r.Method, method) && matchesPath(r.Path, path) {
			count++
		}
	}
	return count
}

func (s *StubServer) add(st *stub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, st)
}

func (s *StubServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, RequestLog{
		Method:      r.Method,
		Path:        r.URL.Path,
		Headers:     headers,
		Body:        string(body),
		QueryString: r.URL.RawQuery,
	})
	st := s.match(r)
	s.mu.Unlock()

	if st == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "no stub matches " + r.Method + " " + r.URL.Path,
		})
		return
	}

	if st.delay > 0 {
		select {
		case <-time.After(st.delay):
		case <-r.Context().Done():
			return
		}
	}
	for k, v := range st.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(st.status)
	_, _ = w.Write(st.body)
}

// match returns the first stub matching r and consumes one of its uses.
// Callers hold s.mu.
func (s *StubServer) match(r *http.Request) *stub {
	for _, st := range s.stubs {
		if st.remaining == 0 {
			continue
		}
		if st.method != "" && st.method != r.Method {
			continue
		}
		if !matchesPath(r.URL.Path, st.path) {
			continue
		}
		if !queryMatches(r, st.query) || !headersMatch(r, st.reqHeaders) {
			continue
		}
		if st.remaining > 0 {
			st.remaining--
		}
		return st
	}
	return nil
}

func queryMatches(r *http.Request, want map[string]string) bool {
	q := r.URL.Query()
	for k, v := range want {
		if q.Get(k) != v {
			return false
		}
	}
	return true
}

func headersMatch(r *http.Request, want map[string]string) bool {
	for k, v := range want {
		if r.Header.Get(k) != v {
			return false
		}
	}
	return true
}

// matchesPath reports whether a request path matches a stub path, where
// {name} segments match any value.
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}

	for i, exp := range expectedParts {
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}
