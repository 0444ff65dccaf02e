// Package todo holds the task model and the engine that sorts tasks into the
// five board sections.
package todo

import (
	"sort"
	"time"
)

// Set is an unordered collection of strings. Used for tags and dependencies.
type Set map[string]struct{}

// NewSet builds a Set from items. Duplicates collapse silently.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports whether item is in the set. A nil set is empty.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Intersects reports whether s and other share at least one member.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for item := range small {
		if large.Has(item) {
			return true
		}
	}
	return false
}

// Slice returns the members in sorted order.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for item := range s {
		out[item] = struct{}{}
	}
	return out
}

// Task is a single tracker entry.
type Task struct {
	ID           string
	Text         string
	Done         bool
	Sorted       bool
	Backburner   bool
	Start        *time.Time
	End          *time.Time
	Timeblock    string
	Tags         Set
	Dependencies Set
	Repeat       *Repeat
	Added        time.Time
}

// New returns an untriaged task with default flags.
func New(id, text string, added time.Time) Task {
	return Task{
		ID:           id,
		Text:         text,
		Tags:         Set{},
		Dependencies: Set{},
		Added:        added,
	}
}

// Overdue reports whether the task has a deadline that is already behind now.
func (t Task) Overdue(now time.Time) bool {
	return !t.Done && t.End != nil && t.End.Before(now)
}

// Clone returns a deep copy so callers can patch without aliasing sets or
// time pointers.
func (t Task) Clone() Task {
	out := t
	out.Tags = t.Tags.Clone()
	out.Dependencies = t.Dependencies.Clone()
	if t.Start != nil {
		start := *t.Start
		out.Start = &start
	}
	if t.End != nil {
		end := *t.End
		out.End = &end
	}
	if t.Repeat != nil {
		r := *t.Repeat
		out.Repeat = &r
	}
	return out
}
