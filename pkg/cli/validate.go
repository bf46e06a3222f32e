package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/litrest/pkg/cli/internal/output"
	"github.com/getmockd/litrest/pkg/suite"
)

// ValidateResult is the JSON form of one validated file.
type ValidateResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Cases  int      `json:"cases"`
	Errors []string `json:"errors,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [files|globs...]",
	Short: "Check suite files without running them",
	Long: `Validate suite files without sending any request.

This command checks:
  - YAML syntax
  - Schema validation (required fields, valid values)
  - Unique case names and valid HTTP methods
  - Relative URLs have a baseUrl
  - JSONPath expectations and assertion expressions compile`,
	Example: `  litrest validate samples.yaml
  litrest validate 'api/**/*.yaml' --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := suite.ExpandPaths(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.New("no suite files matched")
		}

		results := make([]ValidateResult, 0, len(files))
		invalid := 0
		for _, f := range files {
			res := validateFile(f)
			if !res.Valid {
				invalid++
			}
			results = append(results, res)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := output.JSON(out, results); err != nil {
				return err
			}
		} else {
			for _, res := range results {
				if res.Valid {
					fmt.Fprintf(out, "ok    %s (%d cases)\n", res.File, res.Cases)
					continue
				}
				fmt.Fprintf(out, "FAIL  %s\n", res.File)
				for _, e := range res.Errors {
					fmt.Fprintf(out, "      %s\n", e)
				}
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d suite files are invalid", invalid, len(files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateFile(path string) ValidateResult {
	res := ValidateResult{File: path}

	s, err := suite.Load(path)
	if err != nil {
		var se *suite.SchemaError
		if errors.As(err, &se) {
			for _, v := range se.Violations {
				res.Errors = append(res.Errors, v.Error())
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
		return res
	}

	res.Cases = len(s.Cases)
	for _, verr := range suite.Validate(s, suite.WithBaseURL(settings.BaseURL)) {
		res.Errors = append(res.Errors, verr.Error())
	}
	res.Valid = len(res.Errors) == 0
	logger.Debug("validated suite", "path", path, "valid", res.Valid)
	return res
}
