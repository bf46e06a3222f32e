package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/litrest/pkg/openapi"
)

var (
	openapiYAML        bool
	openapiTitle       string
	openapiVersion     string
	openapiDescription string
	openapiOutput      string
)

var openapiCmd = &cobra.Command{
	Use:   "openapi [files|globs...]",
	Short: "Export suites as an OpenAPI 3 document",
	Long: `Build an OpenAPI ` + openapi.Version + ` document from suites. Each case becomes an
operation with its data as the request example and its expected body as the
response example. Cases sharing a path and method are merged.`,
	Example: `  litrest openapi samples.yaml --title "Samples API" -o openapi.json
  litrest openapi 'api/**/*.yaml' --yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suites, err := loadValid(args, settings.BaseURL)
		if err != nil {
			return err
		}

		doc, err := openapi.Build(suites, openapi.Info{
			Title:       openapiTitle,
			Version:     openapiVersion,
			Description: openapiDescription,
		})
		if err != nil {
			return err
		}
		data, err := openapi.Marshal(doc, openapiYAML)
		if err != nil {
			return err
		}

		if openapiOutput != "" {
			if err := os.WriteFile(openapiOutput, data, 0o644); err != nil {
				return fmt.Errorf("writing OpenAPI document: %w", err)
			}
			logger.Info("OpenAPI document written", "path", openapiOutput, "paths", doc.Paths.Len())
			return nil
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	openapiCmd.Flags().BoolVar(&openapiYAML, "yaml", false, "Write YAML instead of JSON")
	openapiCmd.Flags().StringVar(&openapiTitle, "title", "", "API title (default \"API\")")
	openapiCmd.Flags().StringVar(&openapiVersion, "api-version", "", "API version (default \"1.0.0\")")
	openapiCmd.Flags().StringVar(&openapiDescription, "description", "", "API description")
	openapiCmd.Flags().StringVarP(&openapiOutput, "output", "o", "", "Write the document to this file instead of stdout")
	rootCmd.AddCommand(openapiCmd)
}
