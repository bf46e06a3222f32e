// Package matching compares decoded JSON response bodies against expected
// partial structures.
//
// A Matcher is built once from an expected value and classified into one of
// three kinds:
//
//   - Terminal: strings, numbers, booleans and null match by exact value
//   - List: every expected element must match at least one actual element,
//     in any order, with extra actual elements ignored
//   - Dict: every expected key must be present and match, with extra actual
//     keys ignored
//
// Construction is eager: an expected value containing an unsupported type
// anywhere in its tree fails in New with an *UnsupportedTypeError.
//
// Matching records where it is in the nested structure on a Trail. A
// successful match leaves the Trail as deep as it found it; a failed match
// leaves the markers of the failing path in place so the joined Trail reads
// as an explanation:
//
//	In dict: For key items: In list: In dict: For key id: Expected 1 but received 2
//
// Each top-level call owns its Trail, so matches running in parallel never
// share state.
//
// Key types:
//
//   - Matcher: the compiled expectation
//   - Trail: the diagnostic breadcrumbs of one match
//   - MatchFailure: the error returned by AssertMatches
package matching
