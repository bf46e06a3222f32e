package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/getmockd/litrest/pkg/cli/internal/flags"
	"github.com/getmockd/litrest/pkg/cli/internal/output"
	"github.com/getmockd/litrest/pkg/cli/internal/parse"
	"github.com/getmockd/litrest/pkg/runner"
	"github.com/getmockd/litrest/pkg/suite"
)

var (
	runBaseURL  string
	runParallel int
	runTimeout  time.Duration
	runHeaders  flags.StringSlice
)

// ErrCasesFailed is returned by run when at least one case failed.
var ErrCasesFailed = errors.New("cases failed")

var runCmd = &cobra.Command{
	Use:   "run [files|globs...]",
	Short: "Run suites against a live server",
	Long: `Send every case of the given suites and check the responses: status,
headers, body, JSONPath expectations and assertions.

Suites run concurrently (--parallel); cases within a suite run in order and
share cookies. The command fails when any case fails.`,
	Example: `  # Run against the baseUrl written in the suite
  litrest run samples.yaml

  # Run every suite against staging with an auth header
  litrest run 'api/**/*.yaml' --base-url https://staging.example.com/api \
    --header "Authorization=Token $TOKEN"

  # Machine-readable report
  litrest run samples.yaml --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Base URL for relative case URLs, replacing each suite's baseUrl")
	runCmd.Flags().IntVarP(&runParallel, "parallel", "p", 0, "Maximum suites run at once (default 4)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-request timeout (default 30s)")
	runCmd.Flags().VarP(&runHeaders, "header", "H", "Header sent with every request as Name=value (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	if f.Changed("base-url") {
		settings.BaseURL = runBaseURL
		settings.Set("baseUrl")
	}
	if f.Changed("parallel") {
		settings.Parallel = runParallel
		settings.Set("parallel")
	}
	if f.Changed("timeout") {
		settings.Timeout = runTimeout
		settings.Set("timeout")
	}

	suites, err := loadValid(args, settings.BaseURL)
	if err != nil {
		return err
	}

	headers := maps.Clone(settings.Headers)
	if len(runHeaders) > 0 {
		extra, err := parse.Headers(runHeaders)
		if err != nil {
			return err
		}
		if headers == nil {
			headers = make(map[string]string, len(extra))
		}
		maps.Copy(headers, extra)
	}

	r := runner.New(
		runner.WithBaseURL(settings.BaseURL),
		runner.WithParallelism(settings.Parallel),
		runner.WithTimeout(settings.Timeout),
		runner.WithHeaders(headers),
		runner.WithLogger(logger),
	)

	report, runErr := r.Run(cmd.Context(), suites)
	if report == nil {
		return runErr
	}

	if jsonOutput {
		if err := output.JSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}

	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return fmt.Errorf("%d of %d %w", report.Summary.Failed, report.Summary.Total, ErrCasesFailed)
	}
	return nil
}

// loadValid loads suites and rejects any with validation errors. A non-empty
// baseURL replaces each suite's baseUrl when checking relative case URLs.
func loadValid(patterns []string, baseURL string) ([]*suite.Suite, error) {
	suites, err := suite.LoadFiles(patterns)
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, s := range suites {
		for _, verr := range suite.Validate(s, suite.WithBaseURL(baseURL)) {
			errs = append(errs, fmt.Errorf("%s: %w", s.Source, verr))
		}
	}
	return suites, errors.Join(errs...)
}

func printReport(w io.Writer, report *runner.Report) {
	tw := output.Table(w)
	fmt.Fprintln(tw, "RESULT\tSUITE\tCASE\tMETHOD\tSTATUS\tTIME")
	for _, res := range report.Results {
		status := "-"
		if res.StatusCode != 0 {
			status = fmt.Sprintf("%d", res.StatusCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%dms\n",
			outcomeLabel(res.Outcome), res.Suite, res.Case, res.Method, status, res.DurationMs)
	}
	_ = tw.Flush()

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintln(w)
		for _, res := range failures {
			fmt.Fprintf(w, "--- FAIL: %s\n    %s %s\n    %s\n", res.Case, res.Method, res.URL, res.Message)
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped in %s\n",
		s.Passed, s.Failed, s.Skipped, report.Duration.Round(time.Millisecond))
}

// Outcome label styles. lipgloss drops the colors when stdout is not a
// terminal.
var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func outcomeLabel(o runner.Outcome) string {
	switch o {
	case runner.Passed:
		return passStyle.Render("PASS")
	case runner.Failed:
		return failStyle.Render("FAIL")
	case runner.Skipped:
		return skipStyle.Render("SKIP")
	}
	return string(o)
}
