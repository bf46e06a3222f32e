package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies which variant a Matcher is.
type Kind int

// Matcher kinds.
const (
	KindTerminal Kind = iota
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "terminal"
	}
}

// Matcher decides whether an actual value structurally contains an
// expected one. Matchers are immutable once built and may be shared.
type Matcher struct {
	kind Kind

	// terminal
	value any

	// list
	items []*Matcher

	// dict; keys holds the visiting order
	keys   []string
	fields map[string]*Matcher
}

// New builds a Matcher from an expected value.
// Keys of Go maps are visited in sorted order; use ParseJSON to keep the
// key order of a JSON document. A *Matcher nested in expected is used as
// is, so an ordered sub-expectation can be placed inside a plain map.
func New(expected any) (*Matcher, error) {
	return build(expected, "$")
}

// MustNew is like New but panics on error. Intended for test tables.
func MustNew(expected any) *Matcher {
	m, err := New(expected)
	if err != nil {
		panic(err)
	}
	return m
}

func build(v any, path string) (*Matcher, error) {
	if m, ok := v.(*Matcher); ok && m != nil {
		return m, nil
	}
	if n, ok := v.(json.Number); ok {
		if err := checkNumber(n, path); err != nil {
			return nil, err
		}
	}
	if t, ok := normalizeTerminal(v); ok {
		return &Matcher{kind: KindTerminal, value: t}, nil
	}

	if list, ok := asList(v); ok {
		m := &Matcher{kind: KindList, items: make([]*Matcher, 0, len(list))}
		for i, item := range list {
			sub, err := build(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			m.items = append(m.items, sub)
		}
		return m, nil
	}

	if dict, ok := asDict(v); ok {
		keys := make([]string, 0, len(dict))
		for k := range dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		m := &Matcher{kind: KindDict, keys: keys, fields: make(map[string]*Matcher, len(dict))}
		for _, k := range keys {
			sub, err := build(dict[k], path+"."+k)
			if err != nil {
				return nil, err
			}
			m.fields[k] = sub
		}
		return m, nil
	}

	return nil, &UnsupportedTypeError{Value: v, Type: typeName(v), Path: path}
}

// checkNumber rejects a json.Number that is not a finite float64.
func checkNumber(n json.Number, path string) error {
	_, err := n.Float64()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, strconv.ErrRange):
		return &NumberRangeError{Value: n.String(), Path: path}
	default:
		return &UnsupportedTypeError{Value: n, Type: "json.Number", Path: path}
	}
}

// Kind returns the variant of the matcher.
func (m *Matcher) Kind() Kind {
	return m.kind
}

// Expected rebuilds the expected value in decoded-JSON form.
func (m *Matcher) Expected() any {
	switch m.kind {
	case KindList:
		out := make([]any, len(m.items))
		for i, item := range m.items {
			out[i] = item.Expected()
		}
		return out
	case KindDict:
		out := make(map[string]any, len(m.fields))
		for k, sub := range m.fields {
			out[k] = sub.Expected()
		}
		return out
	default:
		return m.value
	}
}

// Matches reports whether actual contains the expected structure.
func (m *Matcher) Matches(actual any) bool {
	return m.MatchTrail(actual, NewTrail())
}

// MatchTrail reports whether actual contains the expected structure,
// recording diagnostics on trail. On success trail is left at the depth it
// had on entry; on failure the markers of the failing path remain.
func (m *Matcher) MatchTrail(actual any, trail *Trail) bool {
	if trail == nil {
		trail = NewTrail()
	}
	switch m.kind {
	case KindList:
		return m.matchList(actual, trail)
	case KindDict:
		return m.matchDict(actual, trail)
	default:
		return m.matchTerminal(actual, trail)
	}
}

func (m *Matcher) matchTerminal(actual any, trail *Trail) bool {
	if !terminalEqual(m.value, actual) {
		trail.push(fmt.Sprintf("Expected %s but received %s", describe(m.value), describe(actual)))
		return false
	}
	return true
}

func (m *Matcher) matchList(actual any, trail *Trail) bool {
	trail.push("In list")
	values, ok := asList(actual)
	if !ok {
		trail.push("Expected list but received " + describe(actual))
		return false
	}
	for _, item := range m.items {
		if !item.matchAny(values, trail) {
			return false
		}
	}
	trail.pop()
	return true
}

// matchAny succeeds when at least one of values matches m. Failed attempts
// are rolled back; if every attempt fails the trail of the nearest miss,
// the attempt that descended deepest, is kept.
func (m *Matcher) matchAny(values []any, trail *Trail) bool {
	mark := trail.Len()
	var nearest []string
	for _, v := range values {
		if m.MatchTrail(v, trail) {
			return true
		}
		if miss := trail.since(mark); len(miss) > len(nearest) {
			nearest = miss
		}
		trail.truncate(mark)
	}

	if len(values) == 0 {
		trail.push(fmt.Sprintf("No element matched %s in empty list", describe(m.Expected())))
		return false
	}
	trail.push(nearest...)
	return false
}

func (m *Matcher) matchDict(actual any, trail *Trail) bool {
	trail.push("In dict")
	values, ok := asDict(actual)
	if !ok {
		trail.push("Expected dict but received " + describe(actual))
		return false
	}
	for _, key := range m.keys {
		trail.push("For key " + key)
		value, present := values[key]
		if !present {
			trail.push("Key was not present")
			return false
		}
		if !m.fields[key].MatchTrail(value, trail) {
			return false
		}
		trail.pop()
	}
	trail.pop()
	return true
}

// AssertMatches builds a Matcher from expected and matches actual against
// it. It returns an *UnsupportedTypeError when expected cannot be compiled
// and a *MatchFailure carrying the trail when actual does not match.
func AssertMatches(expected, actual any) error {
	m, err := New(expected)
	if err != nil {
		return err
	}
	return m.Assert(actual)
}

// Assert matches actual against m on a fresh Trail.
func (m *Matcher) Assert(actual any) error {
	trail := NewTrail()
	if !m.MatchTrail(actual, trail) {
		return &MatchFailure{Trail: trail.Entries()}
	}
	return nil
}
