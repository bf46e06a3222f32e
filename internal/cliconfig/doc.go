// Package cliconfig resolves litrest CLI settings.
//
// Precedence, highest first:
//
//  1. Command-line flags
//  2. Environment variables (LITREST_* prefix)
//  3. Local config file (.litrest.yaml in the working directory)
//  4. Default values
//
// Config.Sources records where each value came from; commands log it at
// debug level.
package cliconfig
