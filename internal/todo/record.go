package todo

import (
	"fmt"
	"time"
)

// Record is the on-disk form of a Task. Sets are stored as arrays.
type Record struct {
	ID           string        `json:"id"`
	Text         string        `json:"text"`
	Done         bool          `json:"done"`
	Sorted       bool          `json:"sorted"`
	Backburner   bool          `json:"backburner"`
	Start        *time.Time    `json:"start,omitempty"`
	End          *time.Time    `json:"end,omitempty"`
	Timeblock    string        `json:"timeblock,omitempty"`
	Tags         []string      `json:"tags"`
	Dependencies []string      `json:"dependencies"`
	Repeat       *RepeatRecord `json:"repeat,omitempty"`
	Added        time.Time     `json:"added"`
}

// RepeatRecord is the on-disk form of a Repeat.
type RepeatRecord struct {
	Unit   string `json:"unit"`
	Amount int    `json:"amount"`
}

// ToRecord converts a task for storage. Set members are written sorted.
func ToRecord(t Task) Record {
	r := Record{
		ID:           t.ID,
		Text:         t.Text,
		Done:         t.Done,
		Sorted:       t.Sorted,
		Backburner:   t.Backburner,
		Start:        copyTime(t.Start),
		End:          copyTime(t.End),
		Timeblock:    t.Timeblock,
		Tags:         t.Tags.Slice(),
		Dependencies: t.Dependencies.Slice(),
		Added:        t.Added,
	}
	if t.Repeat != nil {
		r.Repeat = &RepeatRecord{Unit: string(t.Repeat.Unit), Amount: t.Repeat.Amount}
	}
	return r
}

// FromRecord rebuilds a task from storage. Duplicate tags or dependencies
// are dropped.
func FromRecord(r Record) (Task, error) {
	t := Task{
		ID:           r.ID,
		Text:         r.Text,
		Done:         r.Done,
		Sorted:       r.Sorted,
		Backburner:   r.Backburner,
		Start:        copyTime(r.Start),
		End:          copyTime(r.End),
		Timeblock:    r.Timeblock,
		Tags:         NewSet(r.Tags...),
		Dependencies: NewSet(r.Dependencies...),
		Added:        r.Added,
	}
	if r.Repeat != nil {
		unit, err := ParseUnit(r.Repeat.Unit)
		if err != nil {
			return Task{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		t.Repeat = &Repeat{Unit: unit, Amount: r.Repeat.Amount}
	}
	return t, nil
}
