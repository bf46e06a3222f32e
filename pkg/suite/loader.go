package suite

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}

// Load reads a suite from a YAML or JSON file.
func Load(path string) (*Suite, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	s, err := LoadBytes(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadBytes parses a suite document. source is recorded on the suite and
// used in error messages; it may be empty.
func LoadBytes(data []byte, source string) (*Suite, error) {
	expanded := []byte(ExpandEnvVars(string(data)))

	var raw any
	if err := yaml.Unmarshal(expanded, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if raw == nil {
		return nil, errors.New("suite document is empty")
	}
	if err := ValidateSchema(raw); err != nil {
		return nil, err
	}

	var s Suite
	if err := yaml.Unmarshal(expanded, &s); err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}
	s.Source = source
	s.applyDefaults()
	return &s, nil
}

// LoadFiles loads every suite named by paths. Entries containing glob
// metacharacters are expanded, with ** matching across directories.
// Paths are de-duplicated and loaded in sorted order per entry.
func LoadFiles(paths []string) ([]*Suite, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no suite files matched")
	}

	suites := make([]*Suite, 0, len(files))
	for _, f := range files {
		s, err := Load(f)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// ExpandPaths expands glob entries and removes duplicates.
// Literal paths are kept even if they do not exist so that Load reports them.
func ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		if !isGlob(p) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
			continue
		}

		matches, err := expandGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] && isSuiteFile(m) {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func isSuiteFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** support, falls back to filepath.Glob for simple patterns.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") || strings.Contains(pattern, "{") {
		return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	}
	return filepath.Glob(pattern)
}
