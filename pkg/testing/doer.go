package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/getmockd/litrest/pkg/runner"
)

// StaticDoer returns a Doer that answers every request with status and
// body. A string or []byte body is sent as-is; anything else is encoded as
// JSON.
func StaticDoer(status int, body any) runner.Doer {
	data := encodeBody(body)
	return runner.DoerFunc(func(req *http.Request) (*http.Response, error) {
		if req.Body != nil {
			_, _ = io.Copy(io.Discard, req.Body)
			_ = req.Body.Close()
		}
		return &http.Response{
			Status:        strconv.Itoa(status) + " " + http.StatusText(status),
			StatusCode:    status,
			Proto:         "HTTP/1.1",
			ProtoMajor:    1,
			ProtoMinor:    1,
			Header:        http.Header{"Content-Type": []string{"application/json"}},
			Body:          io.NopCloser(bytes.NewReader(data)),
			ContentLength: int64(len(data)),
			Request:       req,
		}, nil
	})
}

func encodeBody(body any) []byte {
	switch v := body.(type) {
	case nil:
		return nil
	case string:
		return []byte(v)
	case []byte:
		return v
	}
	data, err := json.Marshal(body)
	if err != nil {
		return []byte(err.Error())
	}
	return data
}
