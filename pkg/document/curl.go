package document

import (
	"strings"
)

const (
	// MaxLength is the width past which curl examples are wrapped.
	MaxLength = 60

	// ContinuationIndent is the number of spaces before continuation lines.
	ContinuationIndent = 4
)

// WrapCurl wraps a curl command at MaxLength.
func WrapCurl(cmd string) string {
	return WrapCommand(cmd, MaxLength)
}

// WrapCommand reformats a single-line command into backslash-continued
// lines once it is at least width characters long. Lines break only before
// flags (whitespace, '-', then a word character, or "--" then a word
// character) that are not inside quotes.
//
// The first flag always stays on the command line. Later flags join the
// current line while it fits; after the first break every remaining flag
// starts its own line.
func WrapCommand(cmd string, width int) string {
	if len(cmd) < width {
		return cmd
	}

	bounds := flagBoundaries(cmd)
	if len(bounds) == 0 {
		return cmd
	}

	lines := []string{strings.TrimRight(cmd[:bounds[0]], " \t")}
	wrapped := false
	for i, start := range bounds {
		end := len(cmd)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		segment := strings.TrimSpace(cmd[start:end])

		last := len(lines) - 1
		if i == 0 {
			lines[last] = joinSpace(lines[last], segment)
			continue
		}
		candidate := lines[last] + " " + segment
		if !wrapped && len(candidate) <= width {
			lines[last] = candidate
			continue
		}
		wrapped = true
		lines = append(lines, segment)
	}

	return joinContinued(lines)
}

// joinContinued renders lines with trailing backslashes and indentation.
func joinContinued(lines []string) string {
	indent := strings.Repeat(" ", ContinuationIndent)
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString(" \\\n")
			b.WriteString(indent)
		}
		b.WriteString(line)
	}
	return b.String()
}

func joinSpace(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

// flagBoundaries returns the byte offsets of flags outside quotes.
func flagBoundaries(cmd string) []int {
	var bounds []int
	var quote byte
	escaped := false

	for i := 0; i < len(cmd); i++ {
		ch := cmd[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case (ch == ' ' || ch == '\t') && isFlagAt(cmd, i+1):
			bounds = append(bounds, i+1)
		}
	}
	return bounds
}

func isFlagAt(s string, i int) bool {
	if i >= len(s) || s[i] != '-' {
		return false
	}
	i++
	if i < len(s) && s[i] == '-' {
		i++
	}
	return i < len(s) && isWordChar(s[i])
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// shellDoubleQuote wraps s in double quotes, escaping what the shell would
// otherwise interpret.
func shellDoubleQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}

// needsQuoting reports whether a URL contains characters a shell would
// interpret.
func needsQuoting(s string) bool {
	return strings.ContainsAny(s, "&?*[]{}$;|<>()!# '\"")
}
