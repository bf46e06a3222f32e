package suite

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrNoBaseURL is returned when a case URL is relative and no base URL is set.
var ErrNoBaseURL = errors.New("relative url requires a baseUrl")

// ResolveURL joins the case URL with base. Absolute case URLs are returned
// as-is. Path segments of base are kept: "http://h/api" + "/users" gives
// "http://h/api/users".
func (c *Case) ResolveURL(base string) (string, error) {
	raw := strings.TrimSpace(c.URL)
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw, nil
	}
	if base == "" {
		return "", fmt.Errorf("%w: %q", ErrNoBaseURL, c.URL)
	}

	joined := strings.TrimRight(base, "/")
	if raw != "" {
		joined += "/" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(joined)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", joined, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: missing scheme or host", joined)
	}
	return joined, nil
}

// RequestURL is ResolveURL plus, for methods without a body, Data encoded
// as the query string.
func (c *Case) RequestURL(base string) (string, error) {
	resolved, err := c.ResolveURL(base)
	if err != nil {
		return "", err
	}
	if !bodylessMethods[c.HTTPMethod()] || c.Data == nil {
		return resolved, nil
	}

	params, ok := c.Data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("data for %s must be a mapping", c.HTTPMethod())
	}

	u, err := url.Parse(resolved)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", resolved, err)
	}
	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Add(k, queryValue(params[k]))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func queryValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Body returns the JSON request body, or nil when the method carries no body
// or the case has no data.
func (c *Case) Body() ([]byte, error) {
	if bodylessMethods[c.HTTPMethod()] || c.Data == nil {
		return nil, nil
	}
	data, err := json.Marshal(c.Data)
	if err != nil {
		return nil, fmt.Errorf("data must be valid JSON: %w", err)
	}
	return data, nil
}

// RequestHeaders merges suite headers with case headers (case wins,
// names compared case-insensitively) and adds a JSON Content-Type when the
// case sends a body and none is set.
func (s *Suite) RequestHeaders(c *Case) map[string]string {
	out := make(map[string]string, len(s.Headers)+len(c.Headers)+1)
	set := func(k, v string) {
		for existing := range out {
			if strings.EqualFold(existing, k) {
				delete(out, existing)
			}
		}
		out[k] = v
	}
	for k, v := range s.Headers {
		set(k, v)
	}
	for k, v := range c.Headers {
		set(k, v)
	}

	if !bodylessMethods[c.HTTPMethod()] && c.Data != nil {
		hasContentType := false
		for k := range out {
			if strings.EqualFold(k, "Content-Type") {
				hasContentType = true
			}
		}
		if !hasContentType {
			out["Content-Type"] = "application/json"
		}
	}
	return out
}

// SortedHeaderNames returns the keys of headers in sorted order.
func SortedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
