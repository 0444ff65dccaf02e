package tui

import "github.com/pablasso/triage/internal/tui/views"

// Options configures the board the TUI opens on.
type Options = views.BoardOptions
