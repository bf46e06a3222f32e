package suite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/litrest/internal/matching"
)

var errMergeKey = errors.New("merge keys have no document order")

// UnmarshalYAML decodes an expectation and records the key order of its
// body and path values as written in the file.
func (e *Expectation) UnmarshalYAML(value *yaml.Node) error {
	type plain Expectation
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Expectation(p)

	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "body":
			e.body = orderedMatcher(val)
		case "paths":
			e.paths = orderedPathMatchers(val)
		}
	}
	return nil
}

// BodyMatcher returns the matcher for Body. A body decoded from a suite file
// visits dict keys in document order; a body assigned in Go visits them
// sorted. The order is captured when decoding, so replace the whole
// Expectation rather than editing a decoded Body.
func (e *Expectation) BodyMatcher() (*matching.Matcher, error) {
	if e.body != nil {
		return e.body, nil
	}
	return matching.New(e.Body)
}

// PathConditions returns Paths with the values decoded from a suite file
// replaced by matchers that keep document key order. Existence checks are
// left as they are.
func (e *Expectation) PathConditions() map[string]any {
	if len(e.paths) == 0 {
		return e.Paths
	}
	out := maps.Clone(e.Paths)
	for path, m := range e.paths {
		if _, ok := out[path]; ok {
			out[path] = m
		}
	}
	return out
}

// orderedMatcher returns nil when the node cannot be expressed as JSON; the
// caller then falls back to the decoded value.
func orderedMatcher(n *yaml.Node) *matching.Matcher {
	var buf bytes.Buffer
	if err := nodeJSON(&buf, n); err != nil {
		return nil
	}
	m, err := matching.ParseJSON(buf.Bytes())
	if err != nil {
		return nil
	}
	return m
}

func orderedPathMatchers(n *yaml.Node) map[string]*matching.Matcher {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	out := make(map[string]*matching.Matcher)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var raw any
		if err := val.Decode(&raw); err != nil || matching.IsExistenceCheck(raw) {
			continue
		}
		if m := orderedMatcher(val); m != nil {
			out[key.Value] = m
		}
	}
	return out
}

// nodeJSON writes n as JSON text, keeping mapping keys in document order.
func nodeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) != 1 {
			return errors.New("empty document")
		}
		return nodeJSON(buf, n.Content[0])
	case yaml.AliasNode:
		return nodeJSON(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.ShortTag() == "!!merge" {
				return errMergeKey
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key.Value)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := nodeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := nodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
	return fmt.Errorf("unsupported YAML node kind %d", n.Kind)
}
