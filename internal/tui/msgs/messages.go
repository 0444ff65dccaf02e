// Package msgs defines shared message types for the TUI.
package msgs

import (
	"time"

	"github.com/pablasso/triage/internal/todo"
)

// TasksLoadedMsg carries a fresh read of the task store.
type TasksLoadedMsg struct {
	Tasks []todo.Task
	Err   error
}

// TickMsg fires every refresh interval so the board reclassifies against
// the clock.
type TickMsg struct {
	Now time.Time
}

// TaskSavedMsg reports the outcome of a board edit.
type TaskSavedMsg struct {
	Note string
	Err  error
}
