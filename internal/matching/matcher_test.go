package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalsMatchedExactly(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		same     any
		other    any
	}{
		{"string", "asonthu", "asonthu", ""},
		{"int", 325, 325, 326},
		{"float", 39.23, 39.23, 38.23},
		{"bool", false, false, true},
		{"null", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustNew(tt.expected)
			assert.Equal(t, KindTerminal, m.Kind())
			assert.True(t, m.Matches(tt.same))
			assert.False(t, m.Matches(tt.other))
		})
	}
}

func TestTerminalTypesMustAgree(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"int equals float", 1, 1.0, true},
		{"int64 equals json number", int64(3), json.Number("3"), true},
		{"uint8 equals float", uint8(7), float64(7), true},
		{"float32 equals float64", float32(0.5), 0.5, true},
		{"false is not zero", false, 0, false},
		{"string is not number", "1", 1, false},
		{"null is not empty string", nil, "", false},
		{"null is not false", nil, false, false},
		{"terminal never matches list", "a", []any{"a"}, false},
		{"terminal never matches dict", 1, map[string]any{"a": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustNew(tt.expected).Matches(tt.actual))
		})
	}
}

type status string

func TestNamedTerminalTypes(t *testing.T) {
	assert.True(t, MustNew(status("ok")).Matches("ok"))
	assert.True(t, MustNew("ok").Matches(status("ok")))
}

func TestSameListsMatch(t *testing.T) {
	assert.True(t, MustNew([]any{"a"}).Matches([]any{"a"}))
}

func TestOriginalAsSublistMatches(t *testing.T) {
	assert.True(t, MustNew([]any{"a"}).Matches([]any{"a", "b"}))
	assert.True(t, MustNew([]any{"a"}).Matches([]any{"b", "a"}))
	assert.False(t, MustNew([]any{"a"}).Matches([]any{"b"}))
}

func TestListMatchingIgnoresOrder(t *testing.T) {
	m := MustNew([]any{"c", "a"})
	assert.True(t, m.Matches([]any{"a", "b", "c"}))
	assert.False(t, m.Matches([]any{"a", "b"}))
}

func TestTypedSlicesAndMaps(t *testing.T) {
	assert.True(t, MustNew([]string{"a"}).Matches([]any{"a", "b"}))
	assert.True(t, MustNew(map[string]int{"a": 1}).Matches(map[string]any{"a": 1.0, "b": 2.0}))
	assert.True(t, MustNew([]any{"x"}).Matches([2]string{"y", "x"}))
}

func TestSameDictsMatch(t *testing.T) {
	assert.True(t, MustNew(map[string]any{"a": 1}).Matches(map[string]any{"a": 1}))
}

func TestOriginalAsSubsetMatches(t *testing.T) {
	m := MustNew(map[string]any{"a": 1})
	assert.True(t, m.Matches(map[string]any{"a": 1, "b": 2}))
	assert.False(t, m.Matches(map[string]any{"b": 2}))
	assert.False(t, m.Matches(map[string]any{"a": 2, "b": 2}))
}

func TestUnsupportedTypesFailConstruction(t *testing.T) {
	type dummy struct{ Name string }

	_, err := New(dummy{Name: "A dummy value"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	var ute *UnsupportedTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "$", ute.Path)
	assert.Contains(t, ute.Type, "dummy")
	assert.Contains(t, err.Error(), "A dummy value")
}

func TestUnsupportedTypeNestedFailsEagerly(t *testing.T) {
	expected := map[string]any{
		"a": []any{1, make(chan int)},
	}

	_, err := New(expected)
	var ute *UnsupportedTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "$.a[1]", ute.Path)
	assert.Equal(t, "chan int", ute.Type)

	_, err = New(map[int]string{1: "a"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAssertMatchesPreservesContext(t *testing.T) {
	err := AssertMatches(
		map[string]any{"a": []any{map[string]any{"b": 1}}},
		map[string]any{"a": []any{map[string]any{"b": 2}}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), "In dict")
	assert.Equal(t,
		"In dict: For key a: In list: In dict: For key b: Expected 1 but received 2",
		err.Error())
}

func TestAssertMatchesSurfacesUnsupportedType(t *testing.T) {
	err := AssertMatches(func() {}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestFailureTrails(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     string
	}{
		{
			name:     "missing key",
			expected: map[string]any{"a": 1},
			actual:   map[string]any{"b": 2},
			want:     "In dict: For key a: Key was not present",
		},
		{
			name:     "dict against list",
			expected: map[string]any{"a": 1},
			actual:   []any{},
			want:     "In dict: Expected dict but received []",
		},
		{
			name:     "list against string",
			expected: []any{"a"},
			actual:   "a",
			want:     `In list: Expected list but received "a"`,
		},
		{
			name:     "empty actual list",
			expected: []any{"a"},
			actual:   []any{},
			want:     `In list: No element matched "a" in empty list`,
		},
		{
			name:     "terminal strings are quoted",
			expected: "x",
			actual:   "y",
			want:     `Expected "x" but received "y"`,
		},
		{
			name:     "null rendering",
			expected: nil,
			actual:   false,
			want:     "Expected null but received false",
		},
		{
			name:     "nearest miss is kept",
			expected: []any{map[string]any{"id": 1, "name": "x"}},
			actual:   []any{5, map[string]any{"id": 1, "name": "y"}},
			want:     `In list: In dict: For key name: Expected "x" but received "y"`,
		},
		{
			name:     "first of equally deep misses is kept",
			expected: []any{"a"},
			actual:   []any{"b", "c"},
			want:     `In list: Expected "a" but received "b"`,
		},
		{
			name:     "second list element fails",
			expected: []any{"a", "z"},
			actual:   []any{"a", "b"},
			want:     `In list: Expected "z" but received "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertMatches(tt.expected, tt.actual)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestTrailDepthRestoredOnSuccess(t *testing.T) {
	expected := map[string]any{
		"items": []any{
			map[string]any{"id": 2, "tags": []any{"b"}},
		},
		"total": 2,
	}
	actual := map[string]any{
		"items": []any{
			map[string]any{"id": 1, "tags": []any{"a"}},
			map[string]any{"id": 2, "tags": []any{"a", "b"}},
		},
		"total": 2.0,
		"page":  1,
	}

	trail := NewTrail()
	trail.push("outer")
	require.True(t, MustNew(expected).MatchTrail(actual, trail))
	assert.Equal(t, []string{"outer"}, trail.Entries())
}

func TestMatchTrailNilTrail(t *testing.T) {
	assert.True(t, MustNew([]any{1}).MatchTrail([]any{1}, nil))
}

func TestExpectedRoundTrip(t *testing.T) {
	m := MustNew(map[string]any{"a": []any{1, "b", nil, true}})
	assert.Equal(t, map[string]any{"a": []any{1.0, "b", nil, true}}, m.Expected())
}

func TestAssertMatchesConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make([]error, 64)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actual := map[string]any{"n": i}
			if i%2 == 0 {
				errs[i] = AssertMatches(map[string]any{"n": i}, actual)
				return
			}
			errs[i] = AssertMatches(map[string]any{"n": -1}, actual)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if i%2 == 0 {
			assert.NoError(t, err, "case %d", i)
			continue
		}
		require.Error(t, err, "case %d", i)
		assert.Equal(t, fmt.Sprintf("In dict: For key n: Expected -1 but received %d", i), err.Error())
		assert.Equal(t, 1, strings.Count(err.Error(), "In dict"))
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "terminal", KindTerminal.String())
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "dict", KindDict.String())
}

func TestNumberOutOfRangeFailsConstruction(t *testing.T) {
	_, err := New(json.Number("1e400"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNumberRange))
	assert.False(t, errors.Is(err, ErrUnsupportedType))
	assert.Contains(t, err.Error(), "1e400")

	_, err = New(map[string]any{"items": []any{json.Number("-1e400")}})
	var rangeErr *NumberRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "$.items[0]", rangeErr.Path)
	assert.Equal(t, "-1e400", rangeErr.Value)

	_, err = New(json.Number("not-a-number"))
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestNestedMatcherUsedAsIs(t *testing.T) {
	inner, err := ParseJSON([]byte(`{"z": 1, "a": 1}`))
	require.NoError(t, err)

	m := MustNew(map[string]any{"obj": inner})
	err = m.Assert(map[string]any{"obj": map[string]any{}})
	require.Error(t, err)
	assert.Equal(t, "In dict: For key obj: In dict: For key z: Key was not present", err.Error())
}
