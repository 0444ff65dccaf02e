package todo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is the step of a recurring task.
type Unit string

// Recurrence units
const (
	UnitHour  Unit = "hour"
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// ParseUnit accepts a unit name in any case.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitHour, UnitDay, UnitWeek, UnitMonth, UnitYear:
		return u, nil
	}
	return "", fmt.Errorf("invalid repeat unit %q (expected hour|day|week|month|year)", s)
}

// Repeat describes how far a recurring task moves once it is completed.
type Repeat struct {
	Unit   Unit
	Amount int
}

// ParseRepeat reads the short form used on the command line: 1h, 2d, 1w, 3m, 1y.
func ParseRepeat(s string) (*Repeat, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, fmt.Errorf("invalid repeat %q (expected e.g. 1d, 2w)", s)
	}
	amount, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("invalid repeat amount in %q", s)
	}
	var unit Unit
	switch s[len(s)-1] {
	case 'h':
		unit = UnitHour
	case 'd':
		unit = UnitDay
	case 'w':
		unit = UnitWeek
	case 'm':
		unit = UnitMonth
	case 'y':
		unit = UnitYear
	default:
		return nil, fmt.Errorf("invalid repeat unit in %q (expected h|d|w|m|y)", s)
	}
	return &Repeat{Unit: unit, Amount: amount}, nil
}

// Advance moves t forward by one repeat interval.
func (r Repeat) Advance(t time.Time) time.Time {
	switch r.Unit {
	case UnitHour:
		return t.Add(time.Duration(r.Amount) * time.Hour)
	case UnitDay:
		return t.AddDate(0, 0, r.Amount)
	case UnitWeek:
		return t.AddDate(0, 0, 7*r.Amount)
	case UnitMonth:
		return t.AddDate(0, r.Amount, 0)
	case UnitYear:
		return t.AddDate(r.Amount, 0, 0)
	}
	return t
}

func (r Repeat) String() string {
	return fmt.Sprintf("every %d %s", r.Amount, r.Unit)
}
