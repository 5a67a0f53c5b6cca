// Package tui is the interactive dashboard: the aggregated view with the task
// actions bound to keys.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"wimitasks/internal/board"
	"wimitasks/internal/form"
	"wimitasks/internal/item"
	"wimitasks/internal/models"
	"wimitasks/internal/render"
)

const refreshEvery = 250 * time.Millisecond

type loadedMsg struct{ err error }

type actionMsg struct {
	taskID int64
	err    error
}

type refreshMsg struct{}

// row is one selectable task line with the list it belongs to.
type row struct {
	listIdx int
	taskID  int64
}

// Config carries the dependencies of the dashboard.
type Config struct {
	Aggregator *board.Aggregator
	API        item.Updater
	Owner      models.Identity
	NoticeTTL  time.Duration
	Now        func() time.Time
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx   context.Context
	cfg   Config
	keys  keyMap
	spin  spinner.Model
	items map[int64]*item.Controller

	view    board.View
	rows    []row
	cursor  int
	loading bool
	loadErr error
	// confirming is the id of the task awaiting delete confirmation.
	confirming int64
	width      int
}

// New returns a dashboard for cfg.Owner.
func New(ctx context.Context, cfg Config) Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NoticeTTL <= 0 {
		cfg.NoticeTTL = item.DefaultNoticeTTL
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		cfg:     cfg,
		keys:    defaultKeys(),
		spin:    sp,
		items:   map[int64]*item.Controller{},
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.load(), refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) load() tea.Cmd {
	agg, ctx, owner := m.cfg.Aggregator, m.ctx, m.cfg.Owner.ID
	return func() tea.Msg {
		_, err := agg.Load(ctx, owner)
		return loadedMsg{err: err}
	}
}

func (m Model) controller(t models.Task) *item.Controller {
	if c, ok := m.items[t.ID]; ok {
		return c
	}
	c := item.New(t, m.cfg.API, m.cfg.Aggregator,
		item.WithClock(m.cfg.Now),
		item.WithNoticeTTL(m.cfg.NoticeTTL),
	)
	m.items[t.ID] = c
	return c
}

// sync pulls the aggregator view and rebuilds the selectable rows.
func (m *Model) sync() {
	m.view = m.cfg.Aggregator.View()
	m.rows = m.rows[:0]
	seen := map[int64]bool{}
	for li, l := range m.view {
		for _, t := range l.Tasks {
			m.controller(t).Sync(t)
			seen[t.ID] = true
			m.rows = append(m.rows, row{listIdx: li, taskID: t.ID})
		}
	}
	for id, c := range m.items {
		if !seen[id] && c.Phase() == item.Confirmed {
			delete(m.items, id)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

func (m Model) selected() (*item.Controller, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	c, ok := m.items[m.rows[m.cursor].taskID]
	return c, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		return m, refresh()

	case loadedMsg:
		if errors.Is(msg.err, board.ErrStaleLoad) {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		m.sync()
		return m, nil

	case actionMsg:
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming != 0 {
		c, ok := m.items[m.confirming]
		switch {
		case key.Matches(msg, m.keys.Confirm) && ok:
			m.confirming = 0
			ctx := m.ctx
			return m, func() tea.Msg {
				return actionMsg{taskID: c.Task().ID, err: c.ConfirmDelete(ctx)}
			}
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Confirm):
			if ok {
				c.CancelDelete()
			}
			m.confirming = 0
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.load()
	case key.Matches(msg, m.keys.Toggle):
		c, ok := m.selected()
		if !ok || c.Phase() != item.Confirmed {
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg {
			return actionMsg{taskID: c.Task().ID, err: c.ToggleCompleted(ctx)}
		}
	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.selected(); ok {
			c.RequestDelete()
			m.confirming = c.Task().ID
		}
	}
	return m, nil
}

var (
	cursorStyle = lipgloss.NewStyle().Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func (m Model) View() string {
	var b strings.Builder
	opts := render.Options{Today: form.Today(m.cfg.Now())}

	b.WriteString(titleStyle.Render("Tasks of "+m.cfg.Owner.DisplayName()) + "\n")
	if m.loading {
		b.WriteString(m.spin.View() + " loading…\n")
	}
	if m.loadErr != nil {
		b.WriteString(render.Danger().Render("Could not load tasks: "+m.loadErr.Error()) + "\n")
	}
	b.WriteString(render.Summary(board.Summarize(m.view)) + "\n\n")

	if len(m.view) == 0 && !m.loading {
		b.WriteString(render.Muted().Render("No lists yet.") + "\n")
	}
	idx := 0
	for li, l := range m.view {
		if li > 0 {
			b.WriteString("\n")
		}
		b.WriteString(render.Header(l) + "\n")
		for range l.Tasks {
			r := m.rows[idx]
			c := m.items[r.taskID]
			line := render.TaskLine(c.Task(), opts)
			if idx == m.cursor {
				line = cursorStyle.Render(">") + " " + line
			} else {
				line = "  " + line
			}
			if c.Phase() != item.Confirmed {
				line += " " + render.Muted().Render("…")
			}
			b.WriteString(m.fit(line) + "\n")
			if n, ok := c.Notice(); ok {
				b.WriteString("    " + render.Danger().Render(n.Message) + "\n")
			}
			idx++
		}
	}

	b.WriteString("\n")
	if m.confirming != 0 {
		if c, ok := m.items[m.confirming]; ok {
			b.WriteString(render.Danger().Render(fmt.Sprintf("Delete %q? This cannot be undone.", c.Task().Title)) + "\n")
			b.WriteString(render.Muted().Render(helpLine(m.keys.Confirm, m.keys.Cancel)) + "\n")
			return b.String()
		}
	}
	b.WriteString(render.Muted().Render(helpLine(m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Delete, m.keys.Reload, m.keys.Quit)) + "\n")
	return b.String()
}

// fit truncates a styled line to the terminal width.
func (m Model) fit(line string) string {
	if m.width <= 0 || ansi.StringWidth(line) <= m.width {
		return line
	}
	return ansi.Truncate(line, m.width, "…")
}

// Run starts the dashboard in the alternate screen.
func Run(ctx context.Context, cfg Config) error {
	_, err := tea.NewProgram(New(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
