package todo

import (
	"errors"
	"time"
)

// ErrSelfDependency is returned when a patch would make a task depend on itself.
var ErrSelfDependency = errors.New("task cannot depend on itself")

// Patch changes one field of a task.
type Patch interface {
	apply(t *Task)
}

// SetText replaces the label.
type SetText string

// SetDone sets the completion flag.
type SetDone bool

// SetSorted marks the task as triaged or not.
type SetSorted bool

// SetBackburner sets the deprioritization flag.
type SetBackburner bool

// SetStart replaces the start time. A nil Time clears it.
type SetStart struct{ Time *time.Time }

// SetEnd replaces the deadline. A nil Time clears it.
type SetEnd struct{ Time *time.Time }

// SetTimeblock replaces the timeblock name. Empty clears it.
type SetTimeblock string

// SetTags replaces the tag set.
type SetTags struct{ Tags Set }

// SetDependencies replaces the dependency set.
type SetDependencies struct{ IDs Set }

// SetRepeat replaces the recurrence. A nil Repeat clears it.
type SetRepeat struct{ Repeat *Repeat }

// Complete finishes a task. A repeating task with a start or end instead moves
// both forward by one interval and stays open.
type Complete struct{}

func (p SetText) apply(t *Task) { t.Text = string(p) }
func (p SetDone) apply(t *Task) { t.Done = bool(p) }
func (p SetSorted) apply(t *Task) { t.Sorted = bool(p) }
func (p SetBackburner) apply(t *Task) { t.Backburner = bool(p) }
func (p SetTimeblock) apply(t *Task) { t.Timeblock = string(p) }
func (p SetStart) apply(t *Task) { t.Start = copyTime(p.Time) }
func (p SetEnd) apply(t *Task) { t.End = copyTime(p.Time) }
func (p SetTags) apply(t *Task) { t.Tags = p.Tags.Clone() }
func (p SetDependencies) apply(t *Task) { t.Dependencies = p.IDs.Clone() }

func (p SetRepeat) apply(t *Task) {
	if p.Repeat == nil {
		t.Repeat = nil
		return
	}
	r := *p.Repeat
	t.Repeat = &r
}

func (Complete) apply(t *Task) {
	if t.Repeat == nil || (t.Start == nil && t.End == nil) {
		t.Done = true
		return
	}
	if t.Start != nil {
		next := t.Repeat.Advance(*t.Start)
		t.Start = &next
	}
	if t.End != nil {
		next := t.Repeat.Advance(*t.End)
		t.End = &next
	}
}

// Apply returns a copy of t with patches applied in order. The input task is
// left untouched.
func Apply(t Task, patches ...Patch) (Task, error) {
	out := t.Clone()
	for _, p := range patches {
		p.apply(&out)
	}
	if out.Dependencies.Has(out.ID) {
		return t, ErrSelfDependency
	}
	return out, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
