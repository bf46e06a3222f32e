package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON builds a Matcher from JSON text. Unlike New, object keys are
// visited in the order they appear in the document.
func ParseJSON(data []byte) (*Matcher, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	m, err := parseValue(dec, "$")
	if err != nil {
		return nil, fmt.Errorf("parsing expected JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parsing expected JSON: trailing data after value")
	}
	return m, nil
}

func parseValue(dec *json.Decoder, path string) (*Matcher, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		if n, ok := tok.(json.Number); ok {
			if err := checkNumber(n, path); err != nil {
				return nil, err
			}
		}
		value, ok := normalizeTerminal(tok)
		if !ok {
			return nil, &UnsupportedTypeError{Value: tok, Type: typeName(tok), Path: path}
		}
		return &Matcher{kind: KindTerminal, value: value}, nil
	}

	switch delim {
	case '[':
		m := &Matcher{kind: KindList}
		for dec.More() {
			sub, err := parseValue(dec, fmt.Sprintf("%s[%d]", path, len(m.items)))
			if err != nil {
				return nil, err
			}
			m.items = append(m.items, sub)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil

	case '{':
		m := &Matcher{kind: KindDict, fields: make(map[string]*Matcher)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			sub, err := parseValue(dec, path+"."+key)
			if err != nil {
				return nil, err
			}
			if _, dup := m.fields[key]; !dup {
				m.keys = append(m.keys, key)
			}
			m.fields[key] = sub
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}
