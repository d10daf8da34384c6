// Package tui renders batch progress in the terminal. The driving
// goroutine pushes messages into the program; the model itself never
// touches the pipeline.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seoforge/internal/core"
)

// ProgressMsg updates the batch counter.
type ProgressMsg struct {
	Completed int
	Total     int
}

// ItemUpdateMsg signals that an item's status changed and the list
// should re-render.
type ItemUpdateMsg struct{}

// DoneMsg ends the program once the batch settles.
type DoneMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

const barWidth = 40

type model struct {
	title     string
	items     []*core.ContentItem
	completed int
	total     int
	stopping  bool
	done      bool
	onStop    func()
	width     int
}

// NewModel builds the progress model. onStop is invoked once when the
// user requests cancellation; the batch is expected to settle and send
// DoneMsg afterwards.
func NewModel(title string, items []*core.ContentItem, onStop func()) tea.Model {
	if onStop == nil {
		onStop = func() {}
	}
	return model{title: title, items: items, total: len(items), onStop: onStop}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total

	case ItemUpdateMsg:
		// Item state lives on the shared slice; re-render is enough.

	case DoneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.stopping {
				m.stopping = true
				m.onStop()
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	for _, item := range m.items {
		sb.WriteString(renderItem(item))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderBar(m.completed, m.total))

	help := "[q] stop"
	if m.stopping {
		help = "stopping after in-flight items finish..."
	}
	sb.WriteString(helpStyle.Render(help))
	sb.WriteString("\n")
	return sb.String()
}

func renderItem(item *core.ContentItem) string {
	var icon, line string
	switch item.Status {
	case core.StatusDone:
		icon = doneStyle.Render("✓")
		line = doneStyle.Render(item.StatusMessage)
	case core.StatusError:
		icon = errorStyle.Render("✗")
		line = errorStyle.Render(item.StatusMessage)
	case core.StatusGenerating:
		icon = runningStyle.Render("●")
		line = runningStyle.Render(item.StatusMessage)
	default:
		icon = idleStyle.Render("○")
		line = idleStyle.Render(item.StatusMessage)
	}
	return fmt.Sprintf(" %s %-40s %s", icon, truncate(item.Title, 40), line)
}

func renderBar(completed, total int) string {
	if total <= 0 {
		return ""
	}
	filled := completed * barWidth / total
	bar := barStyle.Render(strings.Repeat("█", filled)) + idleStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %d/%d\n", bar, completed, total)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// NewProgram wraps the model in a Bubble Tea program ready to run. The
// caller drives it with Send(ProgressMsg/ItemUpdateMsg/DoneMsg).
func NewProgram(title string, items []*core.ContentItem, onStop func()) *tea.Program {
	return tea.NewProgram(NewModel(title, items, onStop))
}
