package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"seoforge/internal/core"
)

func TestProgressRendering(t *testing.T) {
	items := []*core.ContentItem{
		{Title: "first article", Status: core.StatusDone, StatusMessage: "done"},
		{Title: "second article", Status: core.StatusGenerating, StatusMessage: "generating: outline"},
	}

	m := NewModel("Generating 2 articles", items, nil)
	updated, _ := m.Update(ProgressMsg{Completed: 1, Total: 2})
	view := updated.View()

	if !strings.Contains(view, "first article") || !strings.Contains(view, "second article") {
		t.Errorf("expected both items in view, got:\n%s", view)
	}
	if !strings.Contains(view, "1/2") {
		t.Errorf("expected progress counter 1/2 in view, got:\n%s", view)
	}
	if !strings.Contains(view, "generating: outline") {
		t.Errorf("expected stage message in view, got:\n%s", view)
	}
}

func TestStopKeyInvokesCallback(t *testing.T) {
	stopped := 0
	m := NewModel("batch", nil, func() { stopped++ })

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	// A second press must not re-trigger the callback.
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	if stopped != 1 {
		t.Errorf("expected one stop callback, got %d", stopped)
	}
	if !strings.Contains(updated.View(), "stopping") {
		t.Errorf("expected stopping notice in view")
	}
}

func TestDoneQuits(t *testing.T) {
	m := NewModel("batch", nil, nil)
	updated, cmd := m.Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command on DoneMsg")
	}
	if updated.View() != "" {
		t.Errorf("expected empty view after done")
	}
}
