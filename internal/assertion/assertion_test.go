package assertion

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponse() Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return Response{
		Status:   201,
		Headers:  h,
		Body:     map[string]any{"id": 3.0, "tags": []any{"a", "b"}},
		Text:     `{"id": 3, "tags": ["a", "b"]}`,
		Duration: 15 * time.Millisecond,
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"status == 201", true},
		{"status >= 200 && status < 300", true},
		{"status == 200", false},
		{`headers["Content-Type"] == "application/json"`, true},
		{"body.id > 0", true},
		{"len(body.tags) == 2", true},
		{`"a" in body.tags`, true},
		{`text contains "tags"`, true},
		{"durationMs < 1000", true},
	}

	resp := sampleResponse()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			a, err := Compile(tt.src)
			require.NoError(t, err)
			got, err := a.Eval(resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileRejectsNonBoolean(t *testing.T) {
	_, err := Compile("status + 1")
	assert.Error(t, err)
}

func TestCompileRejectsSyntaxErrors(t *testing.T) {
	_, err := Compile("status ==")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	a, err := Compile("status == 404")
	require.NoError(t, err)

	err = a.Check(sampleResponse())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFalse)
	assert.Contains(t, err.Error(), "status == 404")

	ok, err := Compile("status == 201")
	require.NoError(t, err)
	assert.NoError(t, ok.Check(sampleResponse()))
}
