package todo

import (
	"fmt"
	"slices"
	"time"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns Hour*60 + Minute.
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Rule is a named recurring window. Nil Start, nil End and empty Days each
// match everything.
type Rule struct {
	Name  string
	Start *ClockTime
	End   *ClockTime
	Days  []time.Weekday
}

// Contains reports whether t falls inside the window. Bounds are inclusive.
func (r Rule) Contains(t time.Time) bool {
	if len(r.Days) > 0 && !slices.Contains(r.Days, t.Weekday()) {
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	if r.Start != nil && minute < r.Start.MinuteOfDay() {
		return false
	}
	if r.End != nil && minute > r.End.MinuteOfDay() {
		return false
	}
	return true
}

// Catalog is an immutable lookup table of timeblock rules.
type Catalog struct {
	rules  []Rule
	byName map[string]int
}

// NewCatalog copies rules into a catalog. On duplicate names the first rule wins.
func NewCatalog(rules ...Rule) *Catalog {
	c := &Catalog{
		rules:  make([]Rule, 0, len(rules)),
		byName: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		if _, exists := c.byName[r.Name]; exists {
			continue
		}
		r.Days = slices.Clone(r.Days)
		c.byName[r.Name] = len(c.rules)
		c.rules = append(c.rules, r)
	}
	return c
}

// Resolve finds a rule by name.
func (c *Catalog) Resolve(name string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// IsWithin reports whether t is inside the named timeblock. Unknown names are
// unconstrained and always return true.
func (c *Catalog) IsWithin(name string, t time.Time) bool {
	rule, ok := c.Resolve(name)
	if !ok {
		return true
	}
	return rule.Contains(t)
}

// Rules returns the catalog entries in configuration order.
func (c *Catalog) Rules() []Rule {
	if c == nil {
		return nil
	}
	return slices.Clone(c.rules)
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// DefaultRules is the built-in catalog used when no configuration overrides it.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "8 to 10", Start: &ClockTime{Hour: 8}, End: &ClockTime{Hour: 22}},
		{Name: "9 to 5 Weekdays", Start: &ClockTime{Hour: 9}, End: &ClockTime{Hour: 17}, Days: slices.Clone(weekdays)},
		{Name: "Weekdays", Days: slices.Clone(weekdays)},
		{Name: "Weekend", Days: []time.Weekday{time.Sunday, time.Saturday}},
	}
}
