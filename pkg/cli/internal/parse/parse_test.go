package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delims     []rune
		key, value string
		ok         bool
	}{
		{"a:b", nil, "a", "b", true},
		{"a=b", []rune{'=', ':'}, "a", "b", true},
		{"Authorization: Token a=b", []rune{'=', ':'}, "Authorization", " Token a=b", true},
		{"novalue", nil, "", "", false},
	}
	for _, tt := range tests {
		key, value, ok := KeyValue(tt.in, tt.delims...)
		assert.Equal(t, tt.key, key, tt.in)
		assert.Equal(t, tt.value, value, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestHeaders(t *testing.T) {
	got, err := Headers([]string{"Authorization=Token abc", "X-Trace: 1", "X-Empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Authorization": "Token abc",
		"X-Trace":       "1",
		"X-Empty":       "",
	}, got)

	_, err = Headers([]string{"broken"})
	assert.ErrorContains(t, err, `invalid header "broken"`)

	_, err = Headers([]string{"=value"})
	assert.Error(t, err)
}
