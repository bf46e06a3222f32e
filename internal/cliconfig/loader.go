package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfigFileName is the name of the local config file.
const LocalConfigFileName = ".litrest.yaml"

// FindLocalConfig returns the path of the local config file in dir, or ""
// when there is none.
func FindLocalConfig(dir string) string {
	path := filepath.Join(dir, LocalConfigFileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// fileConfig mirrors Config with a string timeout so "30s" can be written.
type fileConfig struct {
	LogLevel  string            `yaml:"logLevel"`
	LogFormat string            `yaml:"logFormat"`
	BaseURL   string            `yaml:"baseUrl"`
	Parallel  int               `yaml:"parallel"`
	Timeout   string            `yaml:"timeout"`
	Headers   map[string]string `yaml:"headers"`
}

// LoadConfigFile reads a local config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	cfg := &Config{
		LogLevel:  fc.LogLevel,
		LogFormat: fc.LogFormat,
		BaseURL:   os.ExpandEnv(fc.BaseURL),
		Parallel:  fc.Parallel,
		Headers:   fc.Headers,
	}
	if fc.Timeout != "" {
		d, ok := parseTimeout(fc.Timeout)
		if !ok {
			return nil, &ConfigError{Path: path, Message: fmt.Sprintf("invalid timeout %q", fc.Timeout)}
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// ConfigError is a problem with a config file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// Load resolves defaults, the local config file in dir and the
// environment. Flags are applied by the caller.
func Load(dir string) (*Config, error) {
	cfg := NewDefault()

	if path := FindLocalConfig(dir); path != "" {
		local, err := LoadConfigFile(path)
		if err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		cfg.merge(local, SourceLocal)
	}

	LoadEnvConfig(cfg)
	return cfg, nil
}
