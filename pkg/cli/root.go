package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/litrest/internal/cliconfig"
	"github.com/getmockd/litrest/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	logLevel   string
	logFormat  string
	logFile    string
	jsonOutput bool

	// settings is the merged configuration for the running command.
	settings = cliconfig.NewDefault()
	logger   = logging.Nop()

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "litrest",
	Short: "litrest documents and tests REST APIs from one suite file",
	Long: `litrest reads literate REST suites: YAML files in which every case is a
request, its documentation and the response it should produce.

The same file renders markdown API docs (litrest docs), runs against a live
server (litrest run) and exports an OpenAPI document (litrest openapi).

Settings can be provided via flags, LITREST_* environment variables, or a
.litrest.yaml file in the working directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Main()
	PersistentPreRunE: setup,
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(Main())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write debug logs as JSON to this file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// setup loads layered configuration and builds the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := cliconfig.Load(wd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
		cfg.Set("logLevel")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
		cfg.Set("logFormat")
	}
	settings = cfg

	handler := logging.NewHandler(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: cmd.ErrOrStderr(),
	})
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		cobra.OnFinalize(func() { _ = f.Close() })
		handler = logging.NewMultiHandler(handler, logging.NewHandler(logging.Config{
			Level:  logging.LevelDebug,
			Format: logging.FormatJSON,
			Output: f,
		}))
	}
	logger = slog.New(handler)
	logger.Debug("configuration loaded",
		"logLevel", cfg.LogLevel,
		"baseUrl", cfg.BaseURL,
		"sources", cfg.Sources,
	)
	return nil
}
