package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StubBuilder configures a stub response with a fluent API.
type StubBuilder struct {
	server *StubServer
	stub   *stub
	err    error
}

// setError records the first error encountered during building.
func (b *StubBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error encountered during building.
func (b *StubBuilder) Err() error {
	return b.err
}

// WithStatus sets the response status code. Default is 200.
func (b *StubBuilder) WithStatus(status int) *StubBuilder {
	b.stub.status = status
	return b
}

// WithBody sets the response body. Strings and byte slices are sent as-is;
// other values are encoded as JSON.
func (b *StubBuilder) WithBody(body any) *StubBuilder {
	switch v := body.(type) {
	case string:
		b.stub.body = []byte(v)
	case []byte:
		b.stub.body = v
	default:
		return b.WithJSON(body)
	}
	return b
}

// WithJSON encodes body as JSON and sets the Content-Type header.
func (b *StubBuilder) WithJSON(body any) *StubBuilder {
	data, err := json.Marshal(body)
	if err != nil {
		b.setError(fmt.Errorf("encoding JSON body: %w", err))
		return b
	}
	b.stub.body = data
	b.stub.headers["Content-Type"] = "application/json"
	return b
}

// WithHeader sets a response header.
func (b *StubBuilder) WithHeader(key, value string) *StubBuilder {
	b.stub.headers[key] = value
	return b
}

// WithDelay delays the response.
func (b *StubBuilder) WithDelay(d time.Duration) *StubBuilder {
	b.stub.delay = d
	return b
}

// WithQueryParam only matches requests carrying the query parameter.
func (b *StubBuilder) WithQueryParam(key, value string) *StubBuilder {
	if b.stub.query == nil {
		b.stub.query = make(map[string]string)
	}
	b.stub.query[key] = value
	return b
}

// WithRequestHeader only matches requests carrying the header.
func (b *StubBuilder) WithRequestHeader(key, value string) *StubBuilder {
	if b.stub.reqHeaders == nil {
		b.stub.reqHeaders = make(map[string]string)
	}
	b.stub.reqHeaders[key] = value
	return b
}

// Times limits how often the stub answers. Later requests fall through to
// the next matching stub, or 404.
func (b *StubBuilder) Times(n int) *StubBuilder {
	b.stub.remaining = n
	return b
}

// Once is Times(1).
func (b *StubBuilder) Once() *StubBuilder {
	return b.Times(1)
}

// RespondCreated configures a 201 Created JSON response.
func (b *StubBuilder) RespondCreated(body any) *StubBuilder {
	return b.WithStatus(http.StatusCreated).WithJSON(body)
}

// RespondNoContent configures a 204 No Content response.
func (b *StubBuilder) RespondNoContent() *StubBuilder {
	return b.WithStatus(http.StatusNoContent)
}

// RespondNotFound configures a 404 Not Found response.
func (b *StubBuilder) RespondNotFound() *StubBuilder {
	return b.WithStatus(http.StatusNotFound).WithJSON(map[string]string{
		"error": "not_found",
	})
}

// Reply registers the stub. A builder error is reported on the test.
func (b *StubBuilder) Reply() {
	if b.err != nil {
		b.server.t.Errorf("stub %s %s: %v", b.stub.method, b.stub.path, b.err)
		return
	}
	b.server.add(b.stub)
}
