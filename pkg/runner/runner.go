// Package runner executes suite cases against an HTTP endpoint and checks
// each response against the case expectation.
package runner

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/getmockd/litrest/pkg/logging"
)

// Default runner settings.
const (
	DefaultParallelism = 4
	DefaultTimeout     = 30 * time.Second
)

// RequestIDHeader is set on every request that does not already carry it.
const RequestIDHeader = "X-Request-ID"

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Runner executes suites.
type Runner struct {
	doer        Doer
	baseURL     string
	log         *slog.Logger
	parallelism int
	timeout     time.Duration
	headers     map[string]string
}

// Option configures a Runner.
type Option func(*Runner)

// WithDoer sends every request through d instead of a per-suite client.
func WithDoer(d Doer) Option {
	return func(r *Runner) {
		r.doer = d
	}
}

// WithBaseURL overrides the base URL of every suite.
func WithBaseURL(base string) Option {
	return func(r *Runner) {
		r.baseURL = base
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithParallelism bounds how many suites Run executes at once.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithTimeout limits each request. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithHeaders adds headers to every request, replacing suite and case
// values of the same name.
func WithHeaders(headers map[string]string) Option {
	return func(r *Runner) {
		if r.headers == nil {
			r.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			r.headers[k] = v
		}
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		log:         logging.Nop(),
		parallelism: DefaultParallelism,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// doerFor returns the Doer used for one suite. Without WithDoer each suite
// gets its own client and cookie jar, so a login case can authenticate the
// cases after it.
func (r *Runner) doerFor() Doer {
	if r.doer != nil {
		return r.doer
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		r.log.Warn("cookie jar unavailable", "error", err)
		return &http.Client{}
	}
	return &http.Client{Jar: jar}
}
