package cliconfig

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names
const (
	EnvLogLevel  = "LITREST_LOG_LEVEL"
	EnvLogFormat = "LITREST_LOG_FORMAT"
	EnvBaseURL   = "LITREST_BASE_URL"
	EnvParallel  = "LITREST_PARALLEL"
	EnvTimeout   = "LITREST_TIMEOUT"
)

// LoadEnvConfig applies environment variables to cfg. Only variables that
// are set and parse are applied.
func LoadEnvConfig(cfg *Config) {
	env := &Config{
		LogLevel:  os.Getenv(EnvLogLevel),
		LogFormat: os.Getenv(EnvLogFormat),
		BaseURL:   os.Getenv(EnvBaseURL),
	}

	if v := os.Getenv(EnvParallel); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			env.Parallel = n
		}
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		if d, ok := parseTimeout(v); ok {
			env.Timeout = d
		}
	}

	cfg.merge(env, SourceEnv)
}

// parseTimeout accepts a Go duration ("1m30s") or a number of seconds.
func parseTimeout(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
