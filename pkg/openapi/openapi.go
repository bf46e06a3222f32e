// Package openapi builds an OpenAPI 3 document from suites.
//
// Each case contributes an operation keyed by its path and method. When
// several cases share a path and method (a success and an error case, say)
// the first one names the operation and the others add their responses.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/litrest/pkg/document"
	"github.com/getmockd/litrest/pkg/suite"
)

// Version is the OpenAPI version written to documents.
const Version = "3.0.3"

// Info describes the exported API.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Build converts suites into a validated OpenAPI document.
func Build(suites []*suite.Suite, info Info) (*openapi3.T, error) {
	if info.Title == "" {
		info.Title = "API"
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	seenServers := make(map[string]bool)
	seenIDs := make(map[string]int)

	for _, s := range suites {
		if s.BaseURL != "" && !seenServers[s.BaseURL] {
			seenServers[s.BaseURL] = true
			doc.Servers = append(doc.Servers, &openapi3.Server{URL: s.BaseURL})
		}
		if s.Name != "" {
			doc.Tags = appendTag(doc.Tags, s.Name, s.Description)
		}

		for _, c := range s.Cases {
			if err := addCase(doc, s, c, seenIDs); err != nil {
				return nil, fmt.Errorf("case %s: %w", c.Name, err)
			}
		}
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// Marshal encodes doc as indented JSON or as YAML. YAML keeps the key
// order of the JSON encoding.
func Marshal(doc *openapi3.T, asYAML bool) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if !asYAML {
		return append(data, '\n'), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle drops the flow and quoting styles JSON input produces.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func appendTag(tags openapi3.Tags, name, description string) openapi3.Tags {
	if tags.Get(name) != nil {
		return tags
	}
	return append(tags, &openapi3.Tag{Name: name, Description: strings.TrimSpace(description)})
}

func addCase(doc *openapi3.T, s *suite.Suite, c *suite.Case, seenIDs map[string]int) error {
	path, err := operationPath(c)
	if err != nil {
		return err
	}
	method := c.HTTPMethod()

	var op *openapi3.Operation
	if item := doc.Paths.Value(path); item != nil {
		op = item.GetOperation(method)
	}
	if op == nil {
		op = newOperation(s, c, seenIDs)
		if err := addParametersAndBody(op, c); err != nil {
			return err
		}
		doc.AddOperation(path, method, op)
	}

	status := strconv.Itoa(c.Expect.Status)
	if op.Responses.Value(status) == nil {
		resp, err := newResponse(c)
		if err != nil {
			return err
		}
		op.Responses.Set(status, &openapi3.ResponseRef{Value: resp})
	}
	return nil
}

func newOperation(s *suite.Suite, c *suite.Case, seenIDs map[string]int) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = strings.TrimPrefix(document.Title(c.Name), "## ")
	op.Description = dedent(c.Description)
	op.OperationID = uniqueID(document.SnakeCase(c.Name), seenIDs)
	op.Responses = &openapi3.Responses{}
	if s.Name != "" {
		op.Tags = []string{s.Name}
	}
	if c.Skipped() {
		op.Extensions = map[string]any{"x-skipped": c.Skip}
	}
	return op
}

func addParametersAndBody(op *openapi3.Operation, c *suite.Case) error {
	if c.Data == nil {
		return nil
	}

	body, err := c.Body()
	if err != nil {
		return err
	}
	data, err := jsonValue(c.Data)
	if err != nil {
		return err
	}
	if body == nil {
		params, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("data for %s must be a mapping", c.HTTPMethod())
		}
		for _, name := range sortedKeys(params) {
			p := openapi3.NewQueryParameter(name).WithSchema(schemaFor(params[name]))
			p.Example = params[name]
			op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: p})
		}
		return nil
	}

	content := openapi3.Content{
		"application/json": &openapi3.MediaType{
			Schema:  schemaFor(data).NewRef(),
			Example: data,
		},
	}
	rb := openapi3.NewRequestBody().WithRequired(true).WithContent(content)
	op.RequestBody = &openapi3.RequestBodyRef{Value: rb}
	return nil
}

func newResponse(c *suite.Case) (*openapi3.Response, error) {
	desc := http.StatusText(c.Expect.Status)
	if desc == "" {
		desc = "Response"
	}
	resp := openapi3.NewResponse().WithDescription(desc)
	if c.Expect.Body == nil {
		return resp, nil
	}
	body, err := jsonValue(c.Expect.Body)
	if err != nil {
		return nil, err
	}
	resp.Content = openapi3.Content{
		"application/json": &openapi3.MediaType{
			Schema:  schemaFor(body).NewRef(),
			Example: body,
		},
	}
	return resp, nil
}

// jsonValue converts v to its decoded-JSON form so examples and inferred
// schemas only see JSON types.
func jsonValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("example is not valid JSON: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// operationPath returns the request path of c relative to the suite base
// URL, without the query string.
func operationPath(c *suite.Case) (string, error) {
	u, err := url.Parse(strings.TrimSpace(c.URL))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

func uniqueID(id string, seen map[string]int) string {
	if id == "" {
		id = "operation"
	}
	seen[id]++
	if n := seen[id]; n > 1 {
		return fmt.Sprintf("%s_%d", id, n)
	}
	return id
}

// dedent trims the first line and removes the common indentation of the
// rest.
func dedent(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return ""
	}
	rest := document.RemoveLeadingWhitespace(lines[1:])
	return strings.TrimSpace(strings.Join(append([]string{lines[0]}, rest...), "\n"))
}

// schemaFor infers a schema from a decoded JSON example.
func schemaFor(v any) *openapi3.Schema {
	switch x := v.(type) {
	case nil:
		return &openapi3.Schema{Nullable: true}
	case bool:
		return openapi3.NewBoolSchema()
	case string:
		return openapi3.NewStringSchema()
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return openapi3.NewIntegerSchema()
		}
		return openapi3.NewFloat64Schema()
	case map[string]any:
		schema := openapi3.NewObjectSchema()
		for _, k := range sortedKeys(x) {
			schema.WithProperty(k, schemaFor(x[k]))
		}
		return schema
	case []any:
		items := openapi3.NewSchema()
		if len(x) > 0 {
			items = itemSchema(x)
		}
		return openapi3.NewArraySchema().WithItems(items)
	}
	return openapi3.NewSchema()
}

// itemSchema returns the schema of the first item when every item shares
// its type, and an untyped schema otherwise.
func itemSchema(items []any) *openapi3.Schema {
	first := schemaFor(items[0])
	for _, item := range items[1:] {
		if !sameType(first, schemaFor(item)) {
			return openapi3.NewSchema()
		}
	}
	return first
}

func sameType(a, b *openapi3.Schema) bool {
	if a.Type == nil || b.Type == nil {
		return a.Type == nil && b.Type == nil
	}
	return reflect.DeepEqual(a.Type.Slice(), b.Type.Slice())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
