package document

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getmockd/litrest/pkg/suite"
)

// Options controls markdown rendering.
type Options struct {
	// BaseURL replaces the suite base URL in curl examples.
	BaseURL string
}

func (o Options) baseURL(s *suite.Suite) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return s.BaseURL
}

// CurlCommand builds the curl invocation for a case. The URL goes last, on
// its own continuation line when the flags were wrapped.
func CurlCommand(s *suite.Suite, c *suite.Case, base string) (string, error) {
	target, err := c.RequestURL(base)
	if err != nil {
		return "", err
	}
	body, err := c.Body()
	if err != nil {
		return "", err
	}

	parts := []string{"curl", "-X", c.HTTPMethod()}
	headers := s.RequestHeaders(c)
	for _, name := range suite.SortedHeaderNames(headers) {
		parts = append(parts, "-H", shellDoubleQuote(name+": "+headers[name]))
	}
	if body != nil {
		parts = append(parts, "-d", shellQuote(string(body)))
	}

	if needsQuoting(target) {
		target = shellQuote(target)
	}

	cmd := WrapCurl(strings.Join(parts, " "))
	if strings.Contains(cmd, "\n") || len(cmd)+1+len(target) > MaxLength {
		return joinContinued([]string{cmd, target}), nil
	}
	return cmd + " " + target, nil
}

// Example renders the "### Example:" section with a fenced curl command.
func Example(s *suite.Suite, c *suite.Case, base string) (string, error) {
	cmd, err := CurlCommand(s, c, base)
	if err != nil {
		return "", err
	}
	return "### Example:\n\n```\n" + cmd + "\n```", nil
}

// Response renders the "### Response:" section: the expected status line
// and, when the case expects a body, that body as indented JSON.
func Response(c *suite.Case) (string, error) {
	status := fmt.Sprintf("%d", c.Expect.Status)
	if text := http.StatusText(c.Expect.Status); text != "" {
		status += " " + text
	}

	out := "### Response:\n\n`" + status + "`"
	if c.Expect.Body == nil {
		return out, nil
	}
	data, err := json.MarshalIndent(c.Expect.Body, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding expected body: %w", err)
	}
	return out + "\n\n```json\n" + string(data) + "\n```", nil
}

// Render renders one case: title, description, skip note, example and
// response, separated by blank lines.
func Render(s *suite.Suite, c *suite.Case, opts Options) (string, error) {
	sections := []string{Title(c.Name)}
	if desc := FormatDescription(c.Description); desc != "" {
		sections = append(sections, desc)
	}
	if c.Skipped() {
		sections = append(sections, "> Skipped: "+c.Skip)
	}

	example, err := Example(s, c, opts.baseURL(s))
	if err != nil {
		return "", fmt.Errorf("case %s: %w", c.Name, err)
	}
	sections = append(sections, example)

	response, err := Response(c)
	if err != nil {
		return "", fmt.Errorf("case %s: %w", c.Name, err)
	}
	sections = append(sections, response)

	return strings.Join(sections, "\n\n") + "\n", nil
}

// RenderSuite renders the suite header followed by every case.
func RenderSuite(s *suite.Suite, opts Options) (string, error) {
	var blocks []string
	if s.Name != "" {
		blocks = append(blocks, "# "+s.Name)
	}
	if desc := strings.TrimSpace(s.Description); desc != "" {
		blocks = append(blocks, desc)
	}
	if setup := strings.TrimSpace(s.Setup); setup != "" {
		blocks = append(blocks, "## Setup\n\n"+setup)
	}

	for _, c := range s.Cases {
		doc, err := Render(s, c, opts)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, strings.TrimSuffix(doc, "\n"))
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

// RenderAll renders several suites into one document.
func RenderAll(suites []*suite.Suite, opts Options) (string, error) {
	docs := make([]string, 0, len(suites))
	for _, s := range suites {
		doc, err := RenderSuite(s, opts)
		if err != nil {
			if s.Source != "" {
				return "", fmt.Errorf("%s: %w", s.Source, err)
			}
			return "", err
		}
		docs = append(docs, strings.TrimSuffix(doc, "\n"))
	}
	return strings.Join(docs, "\n\n") + "\n", nil
}
