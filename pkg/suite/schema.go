package suite

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaJSON is the JSON Schema (draft 2020-12) of a suite document.
const SchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "litrest suite",
  "type": "object",
  "required": ["cases"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": ["string", "number"]},
    "name": {"type": "string"},
    "description": {"type": "string"},
    "setup": {"type": "string"},
    "baseUrl": {"type": "string"},
    "headers": {"$ref": "#/$defs/headers"},
    "cases": {"type": "array", "items": {"$ref": "#/$defs/case"}}
  },
  "$defs": {
    "headers": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "case": {
      "type": "object",
      "required": ["name", "url", "expect"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "method": {"type": "string"},
        "url": {"type": "string"},
        "headers": {"$ref": "#/$defs/headers"},
        "data": true,
        "skip": {"type": "string"},
        "expect": {"$ref": "#/$defs/expectation"}
      }
    },
    "expectation": {
      "type": "object",
      "required": ["status"],
      "additionalProperties": false,
      "properties": {
        "status": {"type": "integer", "minimum": 100, "maximum": 599},
        "body": true,
        "paths": {"type": "object"},
        "headers": {"$ref": "#/$defs/headers"},
        "assert": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// SchemaError lists the schema violations of a suite document.
type SchemaError struct {
	Violations []*ValidationError
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return "schema validation failed: " + strings.Join(msgs, "; ")
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("suite.schema.json", strings.NewReader(SchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile("suite.schema.json")
}

// ValidateSchema checks a decoded suite document against SchemaJSON.
func ValidateSchema(doc any) error {
	schemaOnce.Do(func() {
		schema, schemaErr = compileSchema()
	})
	if schemaErr != nil {
		return fmt.Errorf("schema compilation error: %w", schemaErr)
	}

	// Round-trip through encoding/json so YAML scalars become JSON types.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("suite document is not representable as JSON: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("suite document is not representable as JSON: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		result := &SchemaError{}
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			collectSchemaErrors(ve, result)
		}
		if len(result.Violations) == 0 {
			result.Violations = append(result.Violations, &ValidationError{Message: err.Error()})
		}
		return result
	}
	return nil
}

// collectSchemaErrors flattens the leaves of a validation error tree.
func collectSchemaErrors(err *jsonschema.ValidationError, result *SchemaError) {
	if len(err.Causes) == 0 {
		result.Violations = append(result.Violations, &ValidationError{
			Field:   fieldFromPointer(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

// fieldFromPointer converts a JSON Pointer to dot notation.
func fieldFromPointer(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}
