package todo

import (
	"fmt"
	"sort"
	"time"
)

// SectionName identifies one of the five board sections.
type SectionName string

// Section names in display order
const (
	SectionUnsorted   SectionName = "Unsorted"
	SectionMain       SectionName = "Main"
	SectionBackburner SectionName = "Backburner"
	SectionBlocked    SectionName = "Blocked"
	SectionDone       SectionName = "Done"
)

// SectionOrder is the fixed order Classify returns sections in.
var SectionOrder = []SectionName{
	SectionUnsorted,
	SectionMain,
	SectionBackburner,
	SectionBlocked,
	SectionDone,
}

// Section is a named, ordered group of tasks.
type Section struct {
	Name  SectionName
	Tasks []Task
}

// Classifier partitions tasks into sections. It is safe to share once built.
type Classifier struct {
	catalog *Catalog
}

// NewClassifier returns a classifier that consults catalog for timeblocks.
// A nil catalog leaves every timeblock unconstrained.
func NewClassifier(catalog *Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Catalog returns the timeblock catalog the classifier was built with.
func (c *Classifier) Catalog() *Catalog {
	return c.catalog
}

// Classify sorts tasks into the five sections, always returned in
// SectionOrder. Tasks whose tags miss every filter are dropped; an empty
// filter set passes everything. Main is ordered by deadline, earliest first,
// with deadline-free tasks after in input order. Every other section keeps
// input order.
func (c *Classifier) Classify(tasks []Task, filters Set, now time.Time) []Section {
	done := doneIndex(tasks)
	buckets := make(map[SectionName][]Task, len(SectionOrder))

	for _, t := range tasks {
		if len(filters) > 0 && !t.Tags.Intersects(filters) {
			continue
		}
		name := c.bucket(t, done, now)
		buckets[name] = append(buckets[name], t)
	}

	sortByUrgency(buckets[SectionMain])

	sections := make([]Section, len(SectionOrder))
	for i, name := range SectionOrder {
		bucket := buckets[name]
		if bucket == nil {
			bucket = []Task{}
		}
		sections[i] = Section{Name: name, Tasks: bucket}
	}
	return sections
}

// bucket applies the placement cascade. Order matters: the first rule that
// matches wins.
func (c *Classifier) bucket(t Task, done map[string]bool, now time.Time) SectionName {
	switch {
	case t.Done:
		return SectionDone
	case !t.Sorted:
		return SectionUnsorted
	case c.blocked(t, done, now):
		return SectionBlocked
	case t.Backburner:
		return SectionBackburner
	default:
		return SectionMain
	}
}

func (c *Classifier) blocked(t Task, done map[string]bool, now time.Time) bool {
	for id := range t.Dependencies {
		if !done[id] {
			return true
		}
	}
	if t.Start != nil && t.Start.After(now) {
		return true
	}
	if t.Timeblock != "" && !c.catalog.IsWithin(t.Timeblock, now) {
		return true
	}
	return false
}

// doneIndex maps task IDs to their completion flag. A missing ID reads as
// false, so dangling dependencies stay unmet. On duplicate IDs the first task
// wins.
func doneIndex(tasks []Task) map[string]bool {
	index := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if _, seen := index[t.ID]; seen {
			continue
		}
		index[t.ID] = t.Done
	}
	return index
}

// sortByUrgency orders tasks with a deadline first, earliest deadline first.
// Tasks without a deadline keep their relative input order.
func sortByUrgency(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].End, tasks[j].End
		if a == nil {
			return false
		}
		return b == nil || a.Before(*b)
	})
}

// BlockReasonKind tells which condition holds a task back.
type BlockReasonKind string

// Block reason kinds
const (
	BlockedByDependency BlockReasonKind = "dependency"
	BlockedByStart      BlockReasonKind = "start"
	BlockedByTimeblock  BlockReasonKind = "timeblock"
)

// BlockReason describes one condition that keeps a task out of Main.
type BlockReason struct {
	Kind BlockReasonKind
	Ref  string
}

func (r BlockReason) String() string {
	switch r.Kind {
	case BlockedByDependency:
		return fmt.Sprintf("waiting on %s", r.Ref)
	case BlockedByStart:
		return fmt.Sprintf("starts %s", r.Ref)
	case BlockedByTimeblock:
		return fmt.Sprintf("outside timeblock %q", r.Ref)
	}
	return string(r.Kind)
}

// BlockReasons lists every blocking condition on t at now, evaluated against
// the rest of tasks. Dependencies are reported in sorted order. The result is
// empty when t would not be blocked; it ignores Done and Sorted.
func (c *Classifier) BlockReasons(tasks []Task, t Task, now time.Time) []BlockReason {
	done := doneIndex(tasks)
	var reasons []BlockReason
	for _, id := range t.Dependencies.Slice() {
		if !done[id] {
			reasons = append(reasons, BlockReason{Kind: BlockedByDependency, Ref: id})
		}
	}
	if t.Start != nil && t.Start.After(now) {
		reasons = append(reasons, BlockReason{Kind: BlockedByStart, Ref: t.Start.Format("2006-01-02 15:04")})
	}
	if t.Timeblock != "" && !c.catalog.IsWithin(t.Timeblock, now) {
		reasons = append(reasons, BlockReason{Kind: BlockedByTimeblock, Ref: t.Timeblock})
	}
	return reasons
}

// Counts returns the number of tasks per section.
func Counts(sections []Section) map[SectionName]int {
	counts := make(map[SectionName]int, len(sections))
	for _, s := range sections {
		counts[s.Name] = len(s.Tasks)
	}
	return counts
}
