package matching

import (
	"fmt"
	"sort"

	"github.com/ohler55/ojg/jp"
)

// MatchJSONPath evaluates JSONPath conditions against a decoded JSON
// document. Every condition must hold.
//
// An expected value of the form {"exists": true|false} is an existence
// check. Any other expected value is a structural expectation that must
// match at least one node selected by the path.
func MatchJSONPath(conditions map[string]any, doc any, trail *Trail) bool {
	if trail == nil {
		trail = NewTrail()
	}

	paths := make([]string, 0, len(conditions))
	for p := range conditions {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if !matchSingleJSONPath(path, conditions[path], doc, trail) {
			return false
		}
	}
	return true
}

func matchSingleJSONPath(path string, expected, doc any, trail *Trail) bool {
	trail.push("At path " + path)

	expr, err := jp.ParseString(path)
	if err != nil {
		trail.push(fmt.Sprintf("Invalid JSONPath: %v", err))
		return false
	}
	results := expr.Get(doc)

	if IsExistenceCheck(expected) {
		exists := getExistsValue(expected)
		switch {
		case exists && len(results) == 0:
			trail.push("Path selected nothing")
			return false
		case !exists && len(results) > 0:
			trail.push("Path should not exist but selected " + describe(results[0]))
			return false
		}
		trail.pop()
		return true
	}

	if len(results) == 0 {
		trail.push("Path selected nothing")
		return false
	}

	m, err := New(expected)
	if err != nil {
		trail.push(err.Error())
		return false
	}
	if !m.matchAny(results, trail) {
		return false
	}
	trail.pop()
	return true
}

// IsExistenceCheck reports whether expected is an existence check object.
// An existence check is a map with an "exists" key containing a boolean.
func IsExistenceCheck(expected any) bool {
	m, ok := asDict(expected)
	if !ok {
		return false
	}
	v, hasExists := m["exists"]
	if !hasExists || len(m) != 1 {
		return false
	}
	_, isBool := v.(bool)
	return isBool
}

// getExistsValue extracts the boolean value from an existence check.
func getExistsValue(expected any) bool {
	m, _ := asDict(expected)
	b, _ := m["exists"].(bool)
	return b
}

// ValidateJSONPathExpression validates a JSONPath expression at load time.
// Returns an error if the expression is invalid.
func ValidateJSONPathExpression(path string) error {
	_, err := jp.ParseString(path)
	if err != nil {
		return fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
	}
	return nil
}
