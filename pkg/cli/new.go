package cli

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/litrest/pkg/suite"
)

var (
	newName     string
	newBaseURL  string
	newCaseName string
	newMethod   string
	newPath     string
	newOutput   string
	newForce    bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a new suite file",
	Long: `Create a suite file with one case to start from.

Without --name an interactive form asks for the details.`,
	Example: `  # Interactive
  litrest new -o samples.yaml

  # Non-interactive
  litrest new --name Samples --base-url http://localhost:8000/api \
    --case CreateSample --method POST --path /samples -o samples.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("What is the suite called?").
						Placeholder("Samples").
						Value(&newName).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return errors.New("name is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("What is the API base URL?").
						Value(&newBaseURL),
					huh.NewInput().
						Title("Name the first case").
						Placeholder("CreateSample").
						Value(&newCaseName),
					huh.NewSelect[string]().
						Title("Which HTTP method does it use?").
						Options(
							huh.NewOption("GET", "GET"),
							huh.NewOption("POST", "POST"),
							huh.NewOption("PUT", "PUT"),
							huh.NewOption("PATCH", "PATCH"),
							huh.NewOption("DELETE", "DELETE"),
						).
						Value(&newMethod),
					huh.NewInput().
						Title("What path does it call?").
						Value(&newPath),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
		}

		data, err := scaffoldSuite(newName, newBaseURL, newCaseName, newMethod, newPath)
		if err != nil {
			return err
		}

		if newOutput == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if _, err := os.Stat(newOutput); err == nil && !newForce {
			return fmt.Errorf("file already exists: %s\n\nUse --force to overwrite", newOutput)
		}
		if err := os.WriteFile(newOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing suite: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", newOutput)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVarP(&newName, "name", "n", "", "Suite name")
	newCmd.Flags().StringVar(&newBaseURL, "base-url", "http://localhost:8080", "Base URL for relative case URLs")
	newCmd.Flags().StringVar(&newCaseName, "case", "GetHealth", "Name of the first case")
	newCmd.Flags().StringVarP(&newMethod, "method", "X", http.MethodGet, "HTTP method of the first case")
	newCmd.Flags().StringVar(&newPath, "path", "/health", "URL path of the first case")
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "", "Output file (default: stdout)")
	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(newCmd)
}

// scaffoldSuite builds a valid one-case suite and encodes it as YAML.
func scaffoldSuite(name, baseURL, caseName, method, path string) ([]byte, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if caseName == "" {
		caseName = "GetHealth"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	c := &suite.Case{
		Name:        caseName,
		Description: "Describe what this request does.\n\nThe first line becomes the subtitle.\n",
		Method:      method,
		URL:         path,
		Expect:      suite.Expectation{Status: http.StatusOK},
	}
	switch method {
	case http.MethodPost:
		c.Data = map[string]any{"name": "example"}
		c.Expect.Status = http.StatusCreated
		c.Expect.Body = map[string]any{"name": "example"}
	case http.MethodPut, http.MethodPatch:
		c.Data = map[string]any{"name": "example"}
		c.Expect.Body = map[string]any{"name": "example"}
	case http.MethodDelete:
		c.Expect.Status = http.StatusNoContent
	}

	s := &suite.Suite{
		Version: suite.DefaultVersion,
		Name:    strings.TrimSpace(name),
		BaseURL: strings.TrimSpace(baseURL),
		Cases:   []*suite.Case{c},
	}
	if errs := suite.Validate(s); len(errs) > 0 {
		return nil, errs[0]
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding suite: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
