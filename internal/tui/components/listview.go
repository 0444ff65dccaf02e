package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// ListView is a fixed-height window over pre-rendered lines with a 1-column
// scrollbar gutter on the right.
type ListView struct {
	viewport viewport.Model
	lines    []string
	width    int // total width including scrollbar
	height   int
}

// NewListView creates a ListView. The width includes 1 column for the
// scrollbar.
func NewListView(width, height int) ListView {
	vp := viewport.New(max(width-1, 0), height)
	vp.SetContent("")
	return ListView{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetLines replaces the content, keeping the offset in range.
func (l *ListView) SetLines(lines []string) {
	l.lines = lines
	l.viewport.SetContent(strings.Join(lines, "\n"))
	l.viewport.SetYOffset(l.viewport.YOffset)
}

// Center scrolls so that line sits in the middle of the window, clamped to
// the content.
func (l *ListView) Center(line int) {
	if line < 0 || line >= len(l.lines) {
		return
	}
	l.viewport.SetYOffset(max(line-l.height/2, 0))
}

// Offset returns the index of the first visible line.
func (l ListView) Offset() int {
	return l.viewport.YOffset
}

// View renders the window with the scrollbar.
func (l ListView) View() string {
	if l.height <= 0 {
		return ""
	}
	content := strings.Split(l.viewport.View(), "\n")
	bar := strings.Split(renderScrollbar(l.height, len(l.lines), l.viewport.YOffset), "\n")
	contentWidth := max(l.width-1, 0)

	var b strings.Builder
	for i := 0; i < l.height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		cl := ""
		if i < len(content) {
			cl = content[i]
		}
		b.WriteString(cl)
		if pad := contentWidth - lipgloss.Width(cl); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(bar) {
			b.WriteString(bar[i])
		}
	}
	return b.String()
}

// renderScrollbar draws a track with a thumb sized to the visible fraction.
// Content that fits renders as a blank gutter so the layout width is stable.
func renderScrollbar(viewHeight, contentHeight, yOffset int) string {
	if viewHeight <= 0 {
		return ""
	}
	if contentHeight <= viewHeight {
		return strings.Repeat(" \n", viewHeight-1) + " "
	}

	thumbSize := max(viewHeight*viewHeight/contentHeight, 1)
	thumbMaxTop := viewHeight - thumbSize
	thumbTop := yOffset * thumbMaxTop / (contentHeight - viewHeight)
	thumbTop = min(max(thumbTop, 0), thumbMaxTop)

	var b strings.Builder
	for i := 0; i < viewHeight; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= thumbTop && i < thumbTop+thumbSize {
			b.WriteString("█")
		} else {
			b.WriteString("│")
		}
	}
	return b.String()
}
