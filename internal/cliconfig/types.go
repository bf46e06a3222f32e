package cliconfig

import (
	"time"
)

// Config sources.
const (
	SourceDefault = "default"
	SourceLocal   = "local"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Defaults.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultParallel  = 4
	DefaultTimeout   = 30 * time.Second
)

// Config holds the settings shared by CLI commands.
type Config struct {
	LogLevel  string
	LogFormat string
	BaseURL   string
	Parallel  int
	Timeout   time.Duration
	Headers   map[string]string

	// Sources maps a setting name to where its value came from.
	Sources map[string]string
}

// NewDefault returns the default configuration.
func NewDefault() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Parallel:  DefaultParallel,
		Timeout:   DefaultTimeout,
		Sources: map[string]string{
			"logLevel":  SourceDefault,
			"logFormat": SourceDefault,
			"parallel":  SourceDefault,
			"timeout":   SourceDefault,
		},
	}
}

// Set records that a flag set the named setting.
func (c *Config) Set(name string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[name] = SourceFlag
}

// merge copies the non-zero values of src into c.
func (c *Config) merge(src *Config, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	if src.LogLevel != "" {
		c.LogLevel = src.LogLevel
		c.Sources["logLevel"] = source
	}
	if src.LogFormat != "" {
		c.LogFormat = src.LogFormat
		c.Sources["logFormat"] = source
	}
	if src.BaseURL != "" {
		c.BaseURL = src.BaseURL
		c.Sources["baseUrl"] = source
	}
	if src.Parallel > 0 {
		c.Parallel = src.Parallel
		c.Sources["parallel"] = source
	}
	if src.Timeout > 0 {
		c.Timeout = src.Timeout
		c.Sources["timeout"] = source
	}
	if len(src.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(src.Headers))
		}
		for k, v := range src.Headers {
			c.Headers[k] = v
		}
		c.Sources["headers"] = source
	}
}
