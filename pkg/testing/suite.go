package testing

import (
	"strings"
	"testing"

	"github.com/getmockd/litrest/pkg/document"
	"github.com/getmockd/litrest/pkg/runner"
	"github.com/getmockd/litrest/pkg/suite"
)

// Run executes every case of s as a subtest, in order.
func Run(t *testing.T, s *suite.Suite, opts ...runner.Option) {
	t.Helper()

	session := runner.New(opts...).Session(s)
	for _, c := range s.Cases {
		t.Run(TestName(c.Name), func(t *testing.T) {
			if c.Skipped() {
				t.Skip(c.Skip)
			}
			res := session.Run(t.Context(), c)
			if res.Err != nil {
				t.Errorf("%s %s: %v", res.Method, res.URL, res.Err)
			}
		})
	}
}

// TestName converts a case name to a Go subtest name:
// "CreateSampleInLuna" gives "test_create_sample_in_luna".
func TestName(name string) string {
	snake := document.SnakeCase(name)
	if strings.HasPrefix(snake, "test_") {
		return snake
	}
	return "test_" + snake
}
