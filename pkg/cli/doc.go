// Package cli provides the command-line interface for litrest.
//
// Commands:
//   - docs: Render markdown documentation from suites (optionally pretty-printed or watched)
//   - run: Send every case to a live server and report failures
//   - validate: Check suite files without sending requests
//   - openapi: Export suites as an OpenAPI 3 document
//   - new: Scaffold a suite file, interactively when --name is omitted
//   - version: Show litrest version
//
// Settings are resolved from flags, LITREST_* environment variables, a
// .litrest.yaml file in the working directory, and defaults, in that order
// of precedence.
package cli
