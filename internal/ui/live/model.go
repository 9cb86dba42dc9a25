package live

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragdesk/internal/view"
)

// Model renders the result browser using Bubble Tea. Every state change goes
// through the view reducers.
type Model struct {
	state  view.State
	table  table.Model
	events <-chan Event
	opts   Options
	width  int
}

// NewModel constructs a browser model over state. events may be nil.
func NewModel(state view.State, events <-chan Event, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	t := table.New(
		table.WithColumns(columnsFor(state, defaultWidth)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	m := Model{
		state:  state,
		table:  t,
		events: events,
		opts:   opts,
		width:  defaultWidth,
	}
	return m.refresh()
}

// State returns the current view state.
func (m Model) State() view.State {
	return m.state
}

// Init waits for the first external event.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update consumes key presses, external events and re-run results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.table.SetWidth(typed.Width)
		m.table.SetHeight(max(typed.Height-10, 1))
		return m.refresh(), nil
	case tea.KeyMsg:
		next, command := HandleKey(m.state, typed.String(), m.table.Cursor())
		switch command {
		case CommandQuit:
			return m, tea.Quit
		case CommandRerun:
			m.state = next
			return m.refresh(), m.rerun()
		}
		m.state = next
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m.refresh(), cmd
	case EventMsg:
		m.state = Apply(m.state, typed.Event)
		return m.refresh(), waitForEvent(m.events)
	case settledMsg:
		m.state = Apply(m.state, Event(typed))
		return m.refresh(), nil
	}
	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	parts := []string{
		renderHeader(m.state, m.opts.NoColor),
		renderCategories(m.state, m.opts.NoColor),
		renderMetricToggles(m.state, m.opts.NoColor),
		m.table.View(),
		renderAverages(m.state, m.opts.NoColor),
	}
	if detail := renderDetail(m.state); detail != "" {
		parts = append(parts, detail)
	}
	parts = append(parts, renderFooter(m.state, m.opts.NoColor))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// refresh rebuilds columns and rows from state. Rows are cleared first so
// the table never renders rows wider than its columns.
func (m Model) refresh() Model {
	cols := columnsFor(m.state, m.width)
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rowsForState(m.state, cols[1].Width, m.opts.NoColor))
	return m
}

// rerun fetches a fresh snapshot for the current selection.
func (m Model) rerun() tea.Cmd {
	state := m.state
	opts := m.opts
	return func() tea.Msg {
		ctx := context.Background()
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		result := Fetch(ctx, opts.Evaluator, state, opts.Now())
		return settledMsg{Kind: EventSettled, Action: actionFor(state), Result: result}
	}
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// settledMsg carries the outcome of a re-run started from the keyboard.
type settledMsg Event

// waitForEvent blocks until a UI event is available. A closed or nil
// channel stops listening without quitting.
func waitForEvent(events <-chan Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}
