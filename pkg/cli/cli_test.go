package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/litrest/pkg/runner"
	"github.com/getmockd/litrest/pkg/suite"
)

func TestScaffoldSuite(t *testing.T) {
	data, err := scaffoldSuite(" Samples ", "http://localhost:8000/api", "CreateSample", "post", "samples")
	require.NoError(t, err)

	s, err := suite.LoadBytes(data, "scaffold")
	require.NoError(t, err)
	assert.Empty(t, suite.Validate(s))
	assert.Equal(t, "Samples", s.Name)
	assert.Equal(t, suite.DefaultVersion, s.Version)

	c := s.Cases[0]
	assert.Equal(t, "POST", c.Method)
	assert.Equal(t, "/samples", c.URL)
	assert.Equal(t, 201, c.Expect.Status)
	assert.Equal(t, map[string]any{"name": "example"}, c.Data)
}

func TestScaffoldSuiteDefaults(t *testing.T) {
	data, err := scaffoldSuite("Health", "http://h", "", "", "/health")
	require.NoError(t, err)

	var s suite.Suite
	require.NoError(t, yaml.Unmarshal(data, &s))
	assert.Equal(t, "GetHealth", s.Cases[0].Name)
	assert.Equal(t, "GET", s.Cases[0].Method)
	assert.Nil(t, s.Cases[0].Data)
	assert.Equal(t, 200, s.Cases[0].Expect.Status)
}

func TestScaffoldSuiteRejectsInvalid(t *testing.T) {
	_, err := scaffoldSuite("NoBase", "", "Ping", "GET", "/ping")
	assert.ErrorContains(t, err, "url")

	_, err = scaffoldSuite("Tea", "http://h", "Brew", "BREW", "/pot")
	assert.ErrorContains(t, err, "unsupported method")
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api", "v1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "other"), 0o755))

	dirs, err := watchDirs([]string{
		filepath.Join(root, "other", "a.yaml"),
		filepath.Join(root, "other", "*.yaml"),
		filepath.Join(root, "api", "**", "*.yaml"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "api"),
		filepath.Join(root, "api", "v1"),
		filepath.Join(root, "other"),
	}, dirs)

	dirs, err = watchDirs([]string{"samples.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, dirs)
}

func TestIsSuiteEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"yaml write", fsnotify.Event{Name: "a.yaml", Op: fsnotify.Write}, true},
		{"yml create", fsnotify.Event{Name: "a.YML", Op: fsnotify.Create}, true},
		{"json rename", fsnotify.Event{Name: "a.json", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "a.yaml", Op: fsnotify.Chmod}, false},
		{"swap file", fsnotify.Event{Name: ".a.yaml.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSuiteEvent(tt.event))
		})
	}
}

func TestWatchSuites(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "samples.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases: []\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchSuites(ctx, []string{path}, 50*time.Millisecond, func() {
			changes <- struct{}{}
		})
	}()

	// Keep writing until the watcher is registered and reports a change.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-changes:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("cases: []\n# edit\n"), 0o644))
		case <-deadline:
			cancel()
			t.Fatal("no change reported")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestPrintReport(t *testing.T) {
	report := &runner.Report{Duration: 1500 * time.Millisecond}
	report.Add(
		&runner.Result{Suite: "Samples", Case: "Create", Method: "POST", Outcome: runner.Passed, StatusCode: 201, DurationMs: 12},
		&runner.Result{Suite: "Samples", Case: "Broken", Method: "GET", URL: "http://h/x", Outcome: runner.Failed, StatusCode: 500, Message: "expected status 200 but received 500"},
		&runner.Result{Suite: "Samples", Case: "Later", Method: "DELETE", Outcome: runner.Skipped},
	)

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	assert.Regexp(t, `RESULT\s+SUITE\s+CASE\s+METHOD\s+STATUS\s+TIME`, out)
	assert.Regexp(t, `PASS\s+Samples\s+Create\s+POST\s+201\s+12ms`, out)
	assert.Regexp(t, `SKIP\s+Samples\s+Later\s+DELETE\s+-`, out)
	assert.Contains(t, out, "--- FAIL: Broken\n    GET http://h/x\n    expected status 200 but received 500\n")
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped in 1.5s")
}

func TestLoadValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cases:
  - name: A
    url: http://h/a
    expect: {status: 200}
  - name: A
    url: http://h/a
    expect: {status: 200}
`), 0o644))

	_, err := loadValid([]string{path}, "")
	require.Error(t, err)
	var verr *suite.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), path)
}

func TestLoadValidBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nobase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cases:
  - name: List
    url: /samples
    expect: {status: 200}
`), 0o644))

	_, err := loadValid([]string{path}, "")
	assert.ErrorContains(t, err, "relative url requires a baseUrl")

	suites, err := loadValid([]string{path}, "http://localhost:8000/api")
	require.NoError(t, err)
	require.Len(t, suites, 1)
	assert.Empty(t, suites[0].BaseURL, "the suite itself is not rewritten")
}

func TestDisplayVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", displayVersion("1.2.3"))
	assert.Equal(t, "v1.2.3", displayVersion("v1.2.3"))
	assert.Equal(t, "dev", displayVersion("dev"))
	assert.Equal(t, "(devel)", displayVersion("(devel)"))
}
