package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/getmockd/litrest/pkg/cli/internal/output"
	"github.com/getmockd/litrest/pkg/document"
	"github.com/getmockd/litrest/pkg/suite"
)

var (
	docsOutput  string
	docsRender  bool
	docsWatch   bool
	docsBaseURL string
	docsWidth   int
)

// watchDebounce is how long the watcher waits for a burst of file events
// to settle before re-rendering.
const watchDebounce = 300 * time.Millisecond

var docsCmd = &cobra.Command{
	Use:   "docs [files|globs...]",
	Short: "Render markdown documentation from suites",
	Long: `Render every case of the given suites as markdown: a title, the
description, a curl example and the expected response.

Arguments are suite files or glob patterns; ** matches across directories.`,
	Example: `  # Print docs for one suite
  litrest docs samples.yaml

  # Write docs for every suite under api/
  litrest docs 'api/**/*.yaml' -o API.md

  # Preview in the terminal and re-render on save
  litrest docs samples.yaml --render --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Write markdown to this file instead of stdout")
	docsCmd.Flags().BoolVar(&docsRender, "render", false, "Pretty-print the markdown for the terminal")
	docsCmd.Flags().BoolVarP(&docsWatch, "watch", "w", false, "Re-render when suite files change")
	docsCmd.Flags().StringVar(&docsBaseURL, "base-url", "", "Base URL shown in curl examples instead of each suite's baseUrl")
	docsCmd.Flags().IntVar(&docsWidth, "width", 80, "Word wrap width for --render")
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	err := writeDocs(cmd, args)
	if !docsWatch {
		return err
	}
	if err != nil {
		output.Warn(cmd.ErrOrStderr(), "%v", err)
	}

	logger.Info("watching for changes", "paths", args)
	return watchSuites(cmd.Context(), args, watchDebounce, func() {
		if err := writeDocs(cmd, args); err != nil {
			output.Warn(cmd.ErrOrStderr(), "%v", err)
		}
	})
}

func writeDocs(cmd *cobra.Command, patterns []string) error {
	suites, err := suite.LoadFiles(patterns)
	if err != nil {
		return err
	}

	md, err := document.RenderAll(suites, document.Options{BaseURL: docsBaseURL})
	if err != nil {
		return err
	}

	if docsRender {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(docsWidth),
		)
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}
		if md, err = r.Render(md); err != nil {
			return fmt.Errorf("rendering markdown: %w", err)
		}
	}

	if docsOutput != "" {
		if err := os.WriteFile(docsOutput, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing docs: %w", err)
		}
		logger.Info("docs written", "path", docsOutput, "suites", len(suites))
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), md)
	return err
}
