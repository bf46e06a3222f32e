package matching

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// normalizeTerminal reports whether v is a terminal value and returns it in
// canonical form: nil, bool, string or float64.
// Every numeric kind is folded to float64 so that 1 and 1.0 compare equal.
func normalizeTerminal(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case bool:
		return t, true
	case string:
		return t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	}

	if f, ok := toFloat64(v); ok {
		return f, true
	}

	// Named types such as `type Status string`.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return nil, false
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	default:
		return 0, false
	}
}

// asList returns v as a slice when it is a sequence.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asDict returns v as a map when it is a mapping with string keys.
func asDict(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// terminalEqual compares a normalized expected terminal with a raw actual
// value. Types must agree after numeric normalization.
func terminalEqual(expected, actual any) bool {
	a, ok := normalizeTerminal(actual)
	if !ok {
		return false
	}
	switch e := expected.(type) {
	case nil:
		return a == nil
	case bool:
		b, ok := a.(bool)
		return ok && b == e
	case string:
		s, ok := a.(string)
		return ok && s == e
	case float64:
		f, ok := a.(float64)
		return ok && f == e
	}
	return false
}

// describe renders a value for a Trail entry.
func describe(v any) string {
	if t, ok := normalizeTerminal(v); ok {
		switch x := t.(type) {
		case nil:
			return "null"
		case bool:
			return strconv.FormatBool(x)
		case string:
			return strconv.Quote(x)
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
