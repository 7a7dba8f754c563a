package picker

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	right = tea.KeyMsg{Type: tea.KeyRight}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleTabs() []Tab {
	return []Tab{
		{Name: "Presets", Items: []Item{
			{ID: "recommended", Label: "recommended", Selected: true},
		}},
		{Name: "Plugins", Items: []Item{
			{ID: "plugin-git", Label: "plugin-git"},
			{ID: "plugin-node", Label: "plugin-node"},
			{ID: "plugin-python", Label: "plugin-python"},
		}},
	}
}

func TestPickerSelections(t *testing.T) {
	m := New("Init", sampleTabs())
	m = press(m, right, space, down, down, space, enter)

	if !m.done {
		t.Fatal("enter should confirm")
	}
	got := m.Selections()
	if !slices.Equal(got["Presets"], []string{"recommended"}) {
		t.Errorf("Presets = %v", got["Presets"])
	}
	if !slices.Equal(got["Plugins"], []string{"plugin-git", "plugin-python"}) {
		t.Errorf("Plugins = %v", got["Plugins"])
	}
}

func TestPickerToggleAll(t *testing.T) {
	m := New("Init", sampleTabs())
	m = press(m, right, runes("a"))
	if n := len(m.Selections()["Plugins"]); n != 3 {
		t.Errorf("selected %d plugins, want 3", n)
	}
	m = press(m, runes("a"))
	if n := len(m.Selections()["Plugins"]); n != 0 {
		t.Errorf("selected %d plugins after second toggle, want 0", n)
	}
}

func TestPickerWrapsCursor(t *testing.T) {
	m := New("Init", sampleTabs())
	m = press(m, right, up, space)
	if got := m.Selections()["Plugins"]; !slices.Equal(got, []string{"plugin-python"}) {
		t.Errorf("Plugins = %v, want cursor to wrap to the last item", got)
	}
}

func TestPickerSearch(t *testing.T) {
	m := New("Init", sampleTabs())
	m = press(m, right, runes("/"), runes("node"), enter)
	if m.searching || m.search.Value() != "node" {
		t.Fatalf("filter = %q", m.search.Value())
	}
	m = press(m, space)
	if got := m.Selections()["Plugins"]; !slices.Equal(got, []string{"plugin-node"}) {
		t.Errorf("Plugins = %v", got)
	}
	if view := m.View(); strings.Contains(view, "plugin-git") {
		t.Error("filtered view should hide plugin-git")
	}

	m = press(m, runes("/"), esc)
	if m.search.Value() != "" {
		t.Errorf("esc should clear the filter, got %q", m.search.Value())
	}
}

func TestPickerQuit(t *testing.T) {
	m := press(New("Init", sampleTabs()), runes("q"))
	if !m.IsQuitting() {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
