package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/pablasso/triage/internal/todo"
)

const displayLayout = "2006-01-02 15:04"

// Accepted by --start, --end and --at.
var timeLayouts = []string{
	time.RFC3339,
	displayLayout,
	"2006-01-02",
}

func timeNow() time.Time { return time.Now() }

// parseTimeFlag reads a time flag in local time. "none" and "" clear.
func parseTimeFlag(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid time %q (expected RFC 3339, \"YYYY-MM-DD HH:MM\" or \"YYYY-MM-DD\")", s)
}

// parseRepeatFlag reads --repeat. "none" clears.
func parseRepeatFlag(s string) (*todo.Repeat, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	return todo.ParseRepeat(s)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(displayLayout)
}

func formatTags(s todo.Set) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s.Slice(), ", ")
}

// formatAge returns a human-readable relative time string.
func formatAge(t time.Time) string {
	now := nowFunc()
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd ago", days)
}
