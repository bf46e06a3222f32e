package runner

import (
	"time"
)

// Outcome is the result state of one case.
type Outcome string

// Case outcomes.
const (
	Passed  Outcome = "passed"
	Failed  Outcome = "failed"
	Skipped Outcome = "skipped"
)

// Result is the outcome of one case.
type Result struct {
	Suite      string        `json:"suite,omitempty"`
	Case       string        `json:"case"`
	Method     string        `json:"method"`
	URL        string        `json:"url,omitempty"`
	Outcome    Outcome       `json:"outcome"`
	StatusCode int           `json:"statusCode,omitempty"`
	RequestID  string        `json:"requestId,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"durationMs"`
	SkipReason string        `json:"skipReason,omitempty"`
	Message    string        `json:"error,omitempty"`

	// Err is the first failed check.
	Err error `json:"-"`
}

func (r *Result) fail(err error) *Result {
	r.Outcome = Failed
	r.Err = err
	r.Message = err.Error()
	return r
}

// Summary counts results by outcome.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Report collects the results of a run.
type Report struct {
	Results  []*Result     `json:"results"`
	Summary  Summary       `json:"summary"`
	Duration time.Duration `json:"-"`
}

// Add appends results and updates the summary.
func (r *Report) Add(results ...*Result) {
	for _, res := range results {
		r.Results = append(r.Results, res)
		r.Summary.Total++
		switch res.Outcome {
		case Passed:
			r.Summary.Passed++
		case Failed:
			r.Summary.Failed++
		case Skipped:
			r.Summary.Skipped++
		}
	}
}

// Failed reports whether any case failed.
func (r *Report) Failed() bool {
	return r.Summary.Failed > 0
}

// Failures returns the failed results.
func (r *Report) Failures() []*Result {
	var out []*Result
	for _, res := range r.Results {
		if res.Outcome == Failed {
			out = append(out, res)
		}
	}
	return out
}
