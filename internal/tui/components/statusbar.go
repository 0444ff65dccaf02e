package components

import (
	"strings"

	"github.com/pablasso/triage/internal/tui/styles"
)

// StatusBar renders a bottom help bar showing contextual help items.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar string for the given width and items.
// Items are joined with "  |  " and padded to fill the width. A non-empty
// message is shown before the items.
func (s StatusBar) Render(width int, message string, items []string) string {
	content := strings.Join(items, "  |  ")
	if message != "" {
		if content != "" {
			content = message + "    " + content
		} else {
			content = message
		}
	}

	return styles.StatusBarStyle.Width(width).Render(content)
}
