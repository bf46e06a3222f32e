package matching

import "strings"

// Trail records the path a match has taken through nested structures.
// A Trail is not safe for concurrent use; give each match its own.
type Trail struct {
	entries []string
}

// NewTrail returns an empty Trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Len returns the current depth.
func (t *Trail) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the recorded breadcrumbs.
func (t *Trail) Entries() []string {
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// String joins the breadcrumbs with ": ".
func (t *Trail) String() string {
	return strings.Join(t.entries, ": ")
}

// Reset empties the Trail.
func (t *Trail) Reset() {
	t.entries = t.entries[:0]
}

func (t *Trail) push(entries ...string) {
	t.entries = append(t.entries, entries...)
}

func (t *Trail) pop() {
	if len(t.entries) > 0 {
		t.entries = t.entries[:len(t.entries)-1]
	}
}

// since returns a copy of everything recorded after mark.
func (t *Trail) since(mark int) []string {
	if mark >= len(t.entries) {
		return nil
	}
	out := make([]string, len(t.entries)-mark)
	copy(out, t.entries[mark:])
	return out
}

func (t *Trail) truncate(mark int) {
	if mark < len(t.entries) {
		t.entries = t.entries[:mark]
	}
}
