// Package logging builds the slog loggers used by litrest.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Debug("sending request", "case", c.Name, "url", url)
//
// Library packages take a *slog.Logger through an option and default to
// Nop(). The CLI logs to stderr so stdout only carries command output.
package logging
