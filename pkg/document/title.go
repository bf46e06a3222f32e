package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits a CamelCase, snake_case or kebab-case name into words.
// Acronyms stay together: "HTTPServerTest" gives HTTP, Server, Test.
func Words(name string) []string {
	runes := []rune(name)
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Title converts a case name into a level-two markdown heading:
// "CreateSampleInLuna" gives "## Create Sample In Luna".
func Title(name string) string {
	caser := cases.Title(language.English, cases.NoLower)
	words := Words(name)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return "## " + strings.Join(words, " ")
}

// SnakeCase lower-cases the words of name and joins them with underscores.
func SnakeCase(name string) string {
	words := Words(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// LeadingWhitespace returns the number of leading whitespace characters in
// line. A multi-byte space such as U+3000 counts once.
func LeadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// trimIndent removes up to n leading whitespace characters from line.
func trimIndent(line string, n int) string {
	for n > 0 {
		r, size := utf8.DecodeRuneInString(line)
		if size == 0 || !unicode.IsSpace(r) {
			break
		}
		line = line[size:]
		n--
	}
	return line
}

// RemoveLeadingWhitespace strips the indentation common to all non-blank
// lines. Blank lines become empty.
func RemoveLeadingWhitespace(lines []string) []string {
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := LeadingWhitespace(line); indent < 0 || n < indent {
			indent = n
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out[i] = strings.TrimRightFunc(trimIndent(line, indent), unicode.IsSpace)
	}
	return out
}

// FormatDescription turns a docstring into markdown: the first line
// becomes a level-three subtitle and the rest is dedented below it.
func FormatDescription(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines = trimBlankLines(lines)
	if len(lines) == 0 {
		return ""
	}

	subtitle := "### " + strings.TrimSpace(lines[0])
	rest := trimBlankLines(RemoveLeadingWhitespace(lines[1:]))
	if len(rest) == 0 {
		return subtitle
	}
	return subtitle + "\n\n" + strings.Join(rest, "\n")
}

func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
