// Package ui holds the task list view model and the terminal interface that
// renders it.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the set of actions the TUI can trigger.
type Controller interface {
	Add(ctx context.Context, input string) error
	Remove(ctx context.Context, rowID string) (bool, error)
	Clear(ctx context.Context) error
	Filter(query string)
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	title    string
	subtitle string
}

// WithTitle sets the heading.
func WithTitle(title string) TUIOption {
	return func(c *tuiConfig) {
		c.title = title
	}
}

// WithSubtitle sets the line shown under the heading, typically the store
// location.
func WithSubtitle(subtitle string) TUIOption {
	return func(c *tuiConfig) {
		c.subtitle = subtitle
	}
}

// RunTUI runs the interactive list until the user quits or ctx is done.
func RunTUI(ctx context.Context, ctrl Controller, list *List, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := NewModel(ctx, ctrl, list, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeFilter
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Model is the Bubble Tea model for the task list.
type Model struct {
	ctx  context.Context
	ctrl Controller
	list *List
	cfg  tuiConfig

	keys   keyMap
	help   help.Model
	input  textinput.Model
	filter textinput.Model

	mode     mode
	cursor   int
	status   string
	warning  bool
	showHelp bool
	width    int
}

// NewModel returns a Model over list, driving ctrl.
func NewModel(ctx context.Context, ctrl Controller, list *List, opts ...TUIOption) *Model {
	cfg := tuiConfig{title: "Tasks"}
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.Prompt = "+ "

	filter := textinput.New()
	filter.Placeholder = "type to filter"
	filter.Prompt = "/ "

	return &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		list:   list,
		cfg:    cfg,
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  input,
		filter: filter,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeFilter:
			return m.updateFilter(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.list.Visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.setStatus("", false)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, m.keys.Clear):
		if err := m.ctrl.Clear(m.ctx); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.cursor = 0
			m.setStatus("Cleared", false)
		}
	}
	return m, nil
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.input.Blur()
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		text := m.input.Value()
		if err := m.ctrl.Add(m.ctx, text); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.input.Reset()
		m.setStatus("Added "+text, false)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.filter.Reset()
		m.applyFilter()
		m.filter.Blur()
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.filter.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) applyFilter() {
	m.ctrl.Filter(m.filter.Value())
	m.clampCursor()
}

func (m *Model) deleteSelected() {
	visible := m.list.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return
	}
	row := visible[m.cursor]
	removed, err := m.ctrl.Remove(m.ctx, row.ID)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if removed {
		m.setStatus("Removed "+row.Text, false)
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.list.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setStatus(text string, warning bool) {
	m.status = text
	m.warning = warning
}

// Selected returns the row under the cursor.
func (m *Model) Selected() (Row, bool) {
	visible := m.list.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return Row{}, false
	}
	return visible[m.cursor], true
}

// Status returns the current status line and whether it is a warning.
func (m *Model) Status() (string, bool) {
	return m.status, m.warning
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b, m.cfg)

	switch m.mode {
	case modeAdd:
		b.WriteString(m.input.View() + "\n\n")
	case modeFilter:
		b.WriteString(m.filter.View() + "\n\n")
	default:
		if q := m.list.Query(); q != "" {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("Filter: %s (/ to change, esc in filter to clear)", q)) + "\n\n")
		}
	}

	m.writeRows(&b)
	m.writeStatus(&b)
	b.WriteString(m.help.View(m.keys) + "\n")
	return b.String()
}

func writeTitle(b *strings.Builder, cfg tuiConfig) {
	b.WriteString(titleStyle.Render(cfg.title) + "\n")
	if cfg.subtitle != "" {
		b.WriteString(subtleStyle.Render(cfg.subtitle) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) writeRows(b *strings.Builder) {
	visible := m.list.Visible()
	if m.list.Len() == 0 {
		b.WriteString(subtleStyle.Render("  No tasks yet. Press a to add one.") + "\n\n")
		return
	}
	if len(visible) == 0 {
		b.WriteString(subtleStyle.Render("  No tasks match the filter.") + "\n\n")
		return
	}
	for i, row := range visible {
		line := "  " + row.Text + "  " + subtleStyle.Render("[x]")
		if i == m.cursor && m.mode == modeList {
			line = selectedStyle.Render("> "+row.Text) + "  " + subtleStyle.Render("[x]")
		}
		b.WriteString(line + "\n")
	}
	hidden := m.list.Len() - len(visible)
	if hidden > 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  (%d hidden)", hidden)) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) writeStatus(b *strings.Builder) {
	if m.status == "" {
		return
	}
	if m.warning {
		b.WriteString(warnStyle.Render(m.status) + "\n\n")
		return
	}
	b.WriteString(okStyle.Render(m.status) + "\n\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
