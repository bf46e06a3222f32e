package suite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		url     string
		want    string
		wantErr bool
	}{
		{"absolute ignores base", "http://base", "https://other/x", "https://other/x", false},
		{"relative joins base path", "http://h/api", "/samples", "http://h/api/samples", false},
		{"trailing and leading slashes", "http://h/api/", "samples/3", "http://h/api/samples/3", false},
		{"empty url uses base", "http://h/api", "", "http://h/api", false},
		{"relative without base", "", "/x", "", true},
		{"base without host", "localhost", "/x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Case{URL: tt.url}
			got, err := c.ResolveURL(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveURLNoBase(t *testing.T) {
	_, err := (&Case{URL: "/x"}).ResolveURL("")
	assert.True(t, errors.Is(err, ErrNoBaseURL))
}

func TestRequestURLEncodesQueryForBodylessMethods(t *testing.T) {
	c := &Case{
		URL:  "/samples?sort=asc",
		Data: map[string]any{"page": 2, "q": "oil & gas", "active": true},
	}
	got, err := c.RequestURL("http://h")
	require.NoError(t, err)
	assert.Equal(t, "http://h/samples?active=true&page=2&q=oil+%26+gas&sort=asc", got)

	post := &Case{Method: "POST", URL: "/samples", Data: map[string]any{"a": 1}}
	got, err = post.RequestURL("http://h")
	require.NoError(t, err)
	assert.Equal(t, "http://h/samples", got)
}

func TestBody(t *testing.T) {
	post := &Case{Method: "POST", Data: map[string]any{"item1": "value1"}}
	body, err := post.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{"item1": "value1"}`, string(body))

	get := &Case{Data: map[string]any{"item1": "value1"}}
	body, err = get.Body()
	require.NoError(t, err)
	assert.Nil(t, body)

	empty := &Case{Method: "PUT"}
	body, err = empty.Body()
	require.NoError(t, err)
	assert.Nil(t, body)

	bad := &Case{Method: "POST", Data: map[string]any{"f": func() {}}}
	_, err = bad.Body()
	assert.ErrorContains(t, err, "valid JSON")
}

func TestRequestHeaders(t *testing.T) {
	s := &Suite{Headers: map[string]string{"Authorization": "Token a", "X-Trace": "1"}}

	c := &Case{
		Method:  "POST",
		Headers: map[string]string{"authorization": "Token b"},
		Data:    map[string]any{},
	}
	assert.Equal(t, map[string]string{
		"authorization": "Token b",
		"X-Trace":       "1",
		"Content-Type":  "application/json",
	}, s.RequestHeaders(c))

	custom := &Case{Method: "POST", Headers: map[string]string{"content-type": "text/plain"}, Data: "x"}
	assert.Equal(t, "text/plain", s.RequestHeaders(custom)["content-type"])
	assert.NotContains(t, s.RequestHeaders(custom), "Content-Type")

	get := &Case{}
	assert.NotContains(t, s.RequestHeaders(get), "Content-Type")
}

func TestSortedHeaderNames(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "c"}, SortedHeaderNames(map[string]string{"c": "", "B": "", "A": ""}))
}
