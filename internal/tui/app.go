package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/triage/internal/tui/styles"
	"github.com/pablasso/triage/internal/tui/views"
)

// Minimum terminal size the board renders in.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 12
)

// Model is the main Bubble Tea model. It owns terminal sizing and delegates
// everything else to the board.
type Model struct {
	board  views.BoardModel
	width  int
	height int
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(
		initialModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

func initialModel(opts Options) Model {
	return Model{board: views.NewBoardModel(opts)}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.board.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < MinTerminalWidth || m.height < MinTerminalHeight) {
		return m.renderTerminalTooSmall()
	}
	return m.board.View()
}

func (m Model) renderTerminalTooSmall() string {
	lines := []string{
		styles.ErrorStyle.Render("Terminal too small"),
		"",
		styles.SubtleStyle.Render(fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight)),
		styles.SubtleStyle.Render(fmt.Sprintf("Current: %dx%d", m.width, m.height)),
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}
