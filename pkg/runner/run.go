package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/litrest/internal/assertion"
	"github.com/getmockd/litrest/internal/matching"
	"github.com/getmockd/litrest/pkg/suite"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 10 << 20

// Run executes suites concurrently, at most WithParallelism at a time.
// Cases within a suite run sequentially. Results keep suite order.
func (r *Runner) Run(ctx context.Context, suites []*suite.Suite) (*Report, error) {
	start := time.Now()
	perSuite := make([][]*Result, len(suites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, s := range suites {
		g.Go(func() error {
			perSuite[i] = r.RunSuite(gctx, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, results := range perSuite {
		report.Add(results...)
	}
	report.Duration = time.Since(start)

	r.log.Info("run complete",
		"suites", len(suites),
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
		"duration", report.Duration)

	return report, ctx.Err()
}

// Session runs the cases of one suite on a shared client, so cookies set by
// one case are sent by the next.
type Session struct {
	runner *Runner
	suite  *suite.Suite
	doer   Doer
}

// Session starts a session for s.
func (r *Runner) Session(s *suite.Suite) *Session {
	return &Session{runner: r, suite: s, doer: r.doerFor()}
}

// Run executes c. Once ctx is done it fails with the context error without
// sending a request.
func (ss *Session) Run(ctx context.Context, c *suite.Case) *Result {
	if err := ctx.Err(); err != nil {
		res := &Result{Suite: ss.suite.Name, Case: c.Name, Method: c.HTTPMethod()}
		return res.fail(err)
	}
	return ss.runner.runCase(ctx, ss.doer, ss.suite, c)
}

// RunSuite executes the cases of s in order in one Session.
func (r *Runner) RunSuite(ctx context.Context, s *suite.Suite) []*Result {
	ss := r.Session(s)
	results := make([]*Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		results = append(results, ss.Run(ctx, c))
	}
	return results
}

// RunCase executes a single case on a fresh client.
func (r *Runner) RunCase(ctx context.Context, s *suite.Suite, c *suite.Case) *Result {
	return r.Session(s).Run(ctx, c)
}

func (r *Runner) runCase(ctx context.Context, doer Doer, s *suite.Suite, c *suite.Case) *Result {
	res := &Result{Suite: s.Name, Case: c.Name, Method: c.HTTPMethod()}
	log := r.log.With("suite", s.Name, "case", c.Name)

	if c.Skipped() {
		res.Outcome = Skipped
		res.SkipReason = c.Skip
		log.Debug("case skipped", "reason", c.Skip)
		return res
	}

	req, cancel, err := r.newRequest(ctx, s, c)
	if err != nil {
		return res.fail(err)
	}
	defer cancel()
	res.URL = req.URL.String()
	res.RequestID = req.Header.Get(RequestIDHeader)

	log.Debug("sending request", "method", req.Method, "url", res.URL, "requestId", res.RequestID)

	start := time.Now()
	resp, err := doer.Do(req)
	if err != nil {
		res.Duration = time.Since(start)
		res.DurationMs = res.Duration.Milliseconds()
		log.Warn("request failed", "error", err)
		return res.fail(fmt.Errorf("request failed: %w", err))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()
	res.Duration = time.Since(start)
	res.DurationMs = res.Duration.Milliseconds()
	res.StatusCode = resp.StatusCode
	if err != nil {
		return res.fail(fmt.Errorf("reading response body: %w", err))
	}

	if err := Check(c, resp, data, res.Duration); err != nil {
		log.Info("case failed", "status", resp.StatusCode, "error", err)
		return res.fail(err)
	}

	res.Outcome = Passed
	log.Debug("case passed", "status", resp.StatusCode, "duration", res.Duration)
	return res
}

// newRequest builds the HTTP request for c. Runner headers win over suite
// and case headers.
func (r *Runner) newRequest(ctx context.Context, s *suite.Suite, c *suite.Case) (*http.Request, context.CancelFunc, error) {
	base := r.baseURL
	if base == "" {
		base = s.BaseURL
	}
	target, err := c.RequestURL(base)
	if err != nil {
		return nil, nil, err
	}
	body, err := c.Body()
	if err != nil {
		return nil, nil, err
	}

	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, c.HTTPMethod(), target, reader)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("building request: %w", err)
	}

	for k, v := range s.RequestHeaders(c) {
		req.Header.Set(k, v)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return req, cancel, nil
}

// Check compares a response with the expectation of c. Checks run in the
// order status, headers, body, paths, assertions and stop at the first
// failure.
func Check(c *suite.Case, resp *http.Response, body []byte, elapsed time.Duration) error {
	exp := c.Expect

	if resp.StatusCode != exp.Status {
		return &StatusError{Expected: exp.Status, Actual: resp.StatusCode, Body: excerpt(body)}
	}

	for _, name := range suite.SortedHeaderNames(exp.Headers) {
		want := exp.Headers[name]
		values := resp.Header.Values(name)
		if len(values) == 0 {
			return &HeaderError{Name: name, Expected: want, Missing: true}
		}
		if values[0] != want {
			return &HeaderError{Name: name, Expected: want, Actual: values[0]}
		}
	}

	decoded, decodeErr := decodeJSON(body)
	needsJSON := exp.Body != nil || len(exp.Paths) > 0
	if needsJSON && decodeErr != nil {
		return &DecodeError{ContentType: resp.Header.Get("Content-Type"), Err: decodeErr}
	}

	trail := matching.NewTrail()
	if exp.Body != nil {
		m, err := exp.BodyMatcher()
		if err != nil {
			return err
		}
		if !m.MatchTrail(decoded, trail) {
			return &matching.MatchFailure{Trail: trail.Entries()}
		}
	}
	if len(exp.Paths) > 0 && !matching.MatchJSONPath(exp.PathConditions(), decoded, trail) {
		return &matching.MatchFailure{Trail: trail.Entries()}
	}

	if len(exp.Assert) == 0 {
		return nil
	}
	view := assertion.Response{
		Status:   resp.StatusCode,
		Headers:  resp.Header,
		Body:     decoded,
		Text:     string(body),
		Duration: elapsed,
	}
	for _, src := range exp.Assert {
		a, err := assertion.Compile(src)
		if err != nil {
			return &AssertionError{Expression: src, Err: err}
		}
		if err := a.Check(view); err != nil {
			return &AssertionError{Expression: src, Err: err}
		}
	}
	return nil
}

func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty body")
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
