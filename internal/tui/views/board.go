package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/triage/internal/store"
	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/tui/components"
	"github.com/pablasso/triage/internal/tui/msgs"
	"github.com/pablasso/triage/internal/tui/styles"
	"github.com/pablasso/triage/internal/util"
)

const (
	detailMinWidth = 90
	detailWidth    = 40
	timeLayout     = "2006-01-02 15:04"
)

// BoardOptions wires the board to a workspace.
type BoardOptions struct {
	Store      store.Store
	Classifier *todo.Classifier

	// Optional. Edits are logged and serialized with other writers when set.
	Activity *store.ActivityLog
	Lock     *store.Lock

	// Tags backs the 1..9 filter keys, in order.
	Tags []string

	RefreshInterval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// BoardModel shows the classified task list.
type BoardModel struct {
	opts BoardOptions

	tasks    []todo.Task
	sections []todo.Section
	filters  todo.Set
	now      time.Time

	cursor    int
	currentID string

	adding bool
	input  textinput.Model

	status   string
	errorMsg string
	width    int
	height   int
}

// NewBoardModel creates a board. Tasks arrive with the first load.
func NewBoardModel(opts BoardOptions) BoardModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Minute
	}
	if opts.Classifier == nil {
		opts.Classifier = todo.NewClassifier(nil)
	}

	input := textinput.New()
	input.Placeholder = "New task"
	input.Prompt = "+ "
	input.CharLimit = 200

	m := BoardModel{
		opts:    opts,
		filters: todo.Set{},
		now:     opts.Now().Truncate(time.Minute),
		input:   input,
	}
	m.reclassify()
	return m
}

// Init implements tea.Model.
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m BoardModel) load() tea.Cmd {
	s := m.opts.Store
	return func() tea.Msg {
		tasks, err := s.List(context.Background())
		return msgs.TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

func (m BoardModel) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return msgs.TickMsg{Now: t}
	})
}

// Update implements tea.Model.
func (m BoardModel) Update(msg tea.Msg) (BoardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case msgs.TickMsg:
		m.now = msg.Now.Truncate(time.Minute)
		m.reclassify()
		return m, tea.Batch(m.load(), m.tick())

	case msgs.TasksLoadedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("Failed to load tasks: %v", msg.Err)
			return m, nil
		}
		m.tasks = msg.Tasks
		m.reclassify()
		return m, nil

	case msgs.TaskSavedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			m.status = ""
		} else {
			m.errorMsg = ""
			m.status = msg.Note
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m BoardModel) updateBoard(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "a":
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()
	case "r":
		m.status = "Reloaded"
		return m, m.load()
	case "x":
		if t, ok := m.Current(); ok {
			return m, m.save(t, "Completed "+t.Text, "done", todo.Complete{})
		}
	case "s":
		if t, ok := m.Current(); ok {
			note := "Sorted " + t.Text
			if t.Sorted {
				note = "Unsorted " + t.Text
			}
			return m, m.save(t, note, "sorted", todo.SetSorted(!t.Sorted))
		}
	case "b":
		if t, ok := m.Current(); ok {
			note := "Backburnered " + t.Text
			if t.Backburner {
				note = "Restored " + t.Text
			}
			return m, m.save(t, note, "backburner", todo.SetBackburner(!t.Backburner))
		}
	case "0":
		m.filters = todo.Set{}
		m.reclassify()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '1')
		if idx < len(m.opts.Tags) {
			m.toggleFilter(m.opts.Tags[idx])
		}
	}
	return m, nil
}

func (m BoardModel) updateAdding(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		return m, m.add(text)
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *BoardModel) toggleFilter(tag string) {
	if m.filters.Has(tag) {
		delete(m.filters, tag)
	} else {
		m.filters[tag] = struct{}{}
	}
	m.reclassify()
}

// save applies one patch in the background, holding the store lock when
// configured. field names the change in the activity log.
func (m BoardModel) save(t todo.Task, note, field string, patch todo.Patch) tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		var updated todo.Task
		err := withLock(opts.Lock, func() error {
			var err error
			updated, err = opts.Store.Update(context.Background(), t.ID, patch)
			return err
		})
		if err != nil {
			return msgs.TaskSavedMsg{Err: err}
		}

		if _, ok := patch.(todo.Complete); ok && !updated.Done {
			note = "Rescheduled " + updated.Text
		}
		if opts.Activity == nil {
			return msgs.TaskSavedMsg{Note: note}
		}

		if _, ok := patch.(todo.Complete); ok {
			err = opts.Activity.TaskCompleted(updated.ID, !updated.Done)
		} else {
			err = opts.Activity.TaskUpdated(updated.ID, []string{field})
		}
		return savedMsg(note, err)
	}
}

func (m BoardModel) add(text string) tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		t := todo.New(util.NewTaskID(), text, opts.Now())
		err := withLock(opts.Lock, func() error {
			return opts.Store.Add(context.Background(), t)
		})
		if err != nil {
			return msgs.TaskSavedMsg{Err: err}
		}
		if opts.Activity == nil {
			return msgs.TaskSavedMsg{Note: "Added " + text}
		}
		return savedMsg("Added "+text, opts.Activity.TaskAdded(t.ID, t.Text))
	}
}

// savedMsg reports a stored change. An activity log failure does not undo
// the store write, so it only shows in the note.
func savedMsg(note string, activityErr error) msgs.TaskSavedMsg {
	if activityErr != nil {
		note += " (activity log: " + activityErr.Error() + ")"
	}
	return msgs.TaskSavedMsg{Note: note}
}

func withLock(lock *store.Lock, fn func() error) error {
	if lock == nil {
		return fn()
	}
	return lock.With(fn)
}

// reclassify rebuilds the sections and keeps the cursor on the same task
// when it is still visible.
func (m *BoardModel) reclassify() {
	m.sections = m.opts.Classifier.Classify(m.tasks, m.filters, m.now)
	rows := m.rows()
	if len(rows) == 0 {
		m.cursor = 0
		m.currentID = ""
		return
	}
	for i, t := range rows {
		if t.ID == m.currentID {
			m.cursor = i
			return
		}
	}
	m.cursor = min(m.cursor, len(rows)-1)
	m.currentID = rows[m.cursor].ID
}

func (m *BoardModel) moveCursor(delta int) {
	rows := m.rows()
	if len(rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(rows)-1)
	m.currentID = rows[m.cursor].ID
}

// rows flattens the sections in display order.
func (m BoardModel) rows() []todo.Task {
	var rows []todo.Task
	for _, s := range m.sections {
		rows = append(rows, s.Tasks...)
	}
	return rows
}

// Current returns the task under the cursor.
func (m BoardModel) Current() (todo.Task, bool) {
	return todo.ResolveCurrent(m.rows(), m.currentID)
}

// Sections returns the board as last classified.
func (m BoardModel) Sections() []todo.Section {
	return m.sections
}

// Filters returns the active tag filters in sorted order.
func (m BoardModel) Filters() []string {
	return m.filters.Slice()
}

// Now returns the instant the board last classified against.
func (m BoardModel) Now() time.Time {
	return m.now
}

// Adding reports whether the add-task prompt is open.
func (m BoardModel) Adding() bool {
	return m.adding
}

// Status returns the last confirmation message.
func (m BoardModel) Status() string {
	return m.status
}

// Error returns the last error message.
func (m BoardModel) Error() string {
	return m.errorMsg
}

// View implements tea.Model.
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// header (2) + prompt (1 when adding) + status bar (1)
	listHeight := m.height - 3
	if m.adding {
		listHeight--
	}

	if m.width >= detailMinWidth {
		list := m.renderList(m.width-detailWidth-4, max(listHeight, 1))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", m.renderDetail()))
	} else {
		b.WriteString(m.renderList(m.width, max(listHeight, 1)))
	}
	b.WriteString("\n")

	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	message := styles.SuccessStyle.Render(m.status)
	if m.errorMsg != "" {
		message = styles.ErrorStyle.Render(m.errorMsg)
	}
	if m.status == "" && m.errorMsg == "" {
		message = ""
	}
	b.WriteString(components.NewStatusBar().Render(m.width, message, m.helpItems()))

	return b.String()
}

func (m BoardModel) helpItems() []string {
	if m.adding {
		return []string{"Enter Save", "Esc Cancel"}
	}
	return []string{"↑↓ Navigate", "x Done", "s Sort", "b Backburner", "1-9 Filter", "a Add", "q Quit"}
}

func (m BoardModel) renderHeader() string {
	counts := todo.Counts(m.sections)
	parts := make([]string, 0, len(todo.SectionOrder))
	for _, name := range todo.SectionOrder {
		parts = append(parts, fmt.Sprintf("%s %d", name, counts[name]))
	}

	header := styles.SelectedStyle.Render("TRIAGE") + "  " +
		styles.SubtleStyle.Render(strings.Join(parts, " · ")) + "  " +
		styles.SubtleStyle.Render(m.now.Format(timeLayout))

	var filter string
	if len(m.filters) > 0 {
		filter = styles.WarningStyle.Render("Filter: " + strings.Join(m.filters.Slice(), ", "))
	} else if len(m.opts.Tags) > 0 {
		keys := make([]string, 0, min(len(m.opts.Tags), 9))
		for i, tag := range m.opts.Tags {
			if i == 9 {
				break
			}
			keys = append(keys, fmt.Sprintf("%d %s", i+1, tag))
		}
		filter = styles.SubtleStyle.Render(strings.Join(keys, "  "))
	}
	return header + "\n" + filter
}

// renderList draws every section and scrolls so the cursor stays visible.
func (m BoardModel) renderList(width, height int) string {
	var (
		lines      []string
		cursorLine int
		row        int
	)
	for _, s := range m.sections {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, styles.SectionStyle.Render(fmt.Sprintf("%s (%d)", s.Name, len(s.Tasks))))
		if len(s.Tasks) == 0 {
			lines = append(lines, styles.SubtleStyle.Render("  -"))
		}
		for _, t := range s.Tasks {
			if row == m.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderTask(s.Name, t, row == m.cursor))
			row++
		}
	}

	list := components.NewListView(width, height)
	list.SetLines(lines)
	list.Center(cursorLine)
	return list.View()
}

func (m BoardModel) renderTask(section todo.SectionName, t todo.Task, selected bool) string {
	prefix := "  "
	text := t.Text
	switch {
	case selected:
		prefix = "> "
		text = styles.SelectedStyle.Render(text)
	case section == todo.SectionDone:
		text = styles.SuccessStyle.Render(text)
	case section == todo.SectionBlocked:
		text = styles.WarningStyle.Render(text)
	}

	var extra []string
	if len(t.Tags) > 0 {
		extra = append(extra, styles.SubtleStyle.Render(strings.Join(t.Tags.Slice(), ", ")))
	}
	if t.End != nil {
		due := "due " + t.End.Format(timeLayout)
		if t.Overdue(m.now) {
			extra = append(extra, styles.ErrorStyle.Render(due+" (overdue)"))
		} else {
			extra = append(extra, styles.SubtleStyle.Render(due))
		}
	}
	if len(extra) == 0 {
		return prefix + text
	}
	return prefix + text + "  " + strings.Join(extra, "  ")
}

func (m BoardModel) renderDetail() string {
	t, ok := todo.ResolveCurrent(m.tasks, m.currentID)
	if !ok {
		return styles.BoxStyle.Width(detailWidth).Render(styles.SubtleStyle.Render("No task selected"))
	}

	lines := []string{
		styles.SelectedStyle.Render(t.Text),
		"",
		styles.SubtleStyle.Render("id ") + util.ShortID(t.ID),
		styles.SubtleStyle.Render("added ") + t.Added.Format(timeLayout),
	}
	if len(t.Tags) > 0 {
		lines = append(lines, styles.SubtleStyle.Render("tags ")+strings.Join(t.Tags.Slice(), ", "))
	}
	if t.Start != nil {
		lines = append(lines, styles.SubtleStyle.Render("start ")+t.Start.Format(timeLayout))
	}
	if t.End != nil {
		end := t.End.Format(timeLayout)
		if t.Overdue(m.now) {
			end = styles.ErrorStyle.Render(end + " (overdue)")
		}
		lines = append(lines, styles.SubtleStyle.Render("end ")+end)
	}
	if t.Timeblock != "" {
		lines = append(lines, styles.SubtleStyle.Render("timeblock ")+t.Timeblock)
	}
	if t.Repeat != nil {
		lines = append(lines, styles.SubtleStyle.Render("repeat ")+t.Repeat.String())
	}

	if reasons := m.opts.Classifier.BlockReasons(m.tasks, t, m.now); len(reasons) > 0 && !t.Done && t.Sorted {
		lines = append(lines, "", styles.WarningStyle.Render("Blocked"))
		for _, r := range reasons {
			lines = append(lines, "  "+m.describeReason(r))
		}
	}

	return styles.BoxStyle.Width(detailWidth).Render(strings.Join(lines, "\n"))
}

func (m BoardModel) describeReason(r todo.BlockReason) string {
	if r.Kind != todo.BlockedByDependency {
		return r.String()
	}
	if dep, ok := todo.ResolveCurrent(m.tasks, r.Ref); ok {
		return "waiting on " + dep.Text
	}
	return "waiting on missing task " + util.ShortID(r.Ref)
}

// SetSize updates the model dimensions.
func (m *BoardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}
