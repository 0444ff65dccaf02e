package util

import (
	"strings"

	"github.com/google/uuid"
)

// shortIDLen is how many leading hex digits of a task ID the CLI shows.
const shortIDLen = 8

// NewTaskID returns a random (version 4) UUID string for a new task.
func NewTaskID() string {
	return uuid.NewString()
}

// ShortID returns the first eight characters of id, for display.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// MatchID resolves a possibly shortened id against known IDs. An exact match
// always wins; otherwise a unique prefix resolves. The second return value
// reports whether the prefix was ambiguous.
func MatchID(ids []string, prefix string) (string, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", false
	}

	var found string
	for _, id := range ids {
		if id == prefix {
			return id, false
		}
		if strings.HasPrefix(id, prefix) {
			if found != "" {
				return "", true
			}
			found = id
		}
	}
	return found, false
}
