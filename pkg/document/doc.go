// Package document renders suites as markdown.
//
// Each case becomes a section with a title derived from its name, the
// description (first line promoted to a subtitle), a curl example wrapped
// to MaxLength columns and the expected response.
package document
