// Package picker implements the interactive multi-select used by
// "hugsy init -i" to choose presets and plugins.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxVisibleItems = 10

// Item represents a selectable item
type Item struct {
	ID          string
	Label       string
	Description string
	Selected    bool
}

// Tab groups items under a heading, e.g. presets or plugins
type Tab struct {
	Name  string
	Items []Item

	cursor   int
	offset   int
	selected map[string]bool
}

// visible returns the items matching query
func (t *Tab) visible(query string) []Item {
	if query == "" {
		return t.Items
	}
	query = strings.ToLower(query)
	var out []Item
	for _, item := range t.Items {
		if strings.Contains(strings.ToLower(item.ID), query) ||
			strings.Contains(strings.ToLower(item.Label), query) ||
			strings.Contains(strings.ToLower(item.Description), query) {
			out = append(out, item)
		}
	}
	return out
}

func (t *Tab) count() int {
	n := 0
	for _, item := range t.Items {
		if t.selected[item.ID] {
			n++
		}
	}
	return n
}

// scroll keeps the cursor inside the window of n visible items
func (t *Tab) scroll(n int) {
	t.cursor = max(0, min(t.cursor, n-1))
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+maxVisibleItems {
		t.offset = t.cursor - maxVisibleItems + 1
	}
	t.offset = max(0, min(t.offset, n-maxVisibleItems))
}

// Model is the Bubble Tea model for the tabbed multi-select picker
type Model struct {
	title     string
	tabs      []Tab
	current   int
	search    textinput.Model
	searching bool
	help      help.Model
	done      bool
	quitting  bool
}

// New creates a picker over tabs. Items marked Selected start checked.
func New(title string, tabs []Tab) Model {
	for i := range tabs {
		tabs[i].selected = make(map[string]bool)
		for _, item := range tabs[i].Items {
			if item.Selected {
				tabs[i].selected[item.ID] = true
			}
		}
	}

	ti := textinput.New()
	ti.Placeholder = "Type to search..."
	ti.CharLimit = 50
	ti.Width = 40

	return Model{
		title:  title,
		tabs:   tabs,
		search: ti,
		help:   help.New(),
	}
}

// Selections returns the selected item IDs per tab name, in item order
func (m Model) Selections() map[string][]string {
	result := make(map[string][]string, len(m.tabs))
	for _, tab := range m.tabs {
		var ids []string
		for _, item := range tab.Items {
			if tab.selected[item.ID] {
				ids = append(ids, item.ID)
			}
		}
		result[tab.Name] = ids
	}
	return result
}

// IsQuitting returns true if the user quit without confirming
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.tabs) == 0 {
		if ok && key.Matches(keyMsg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	tab := &m.tabs[m.current]

	if m.searching {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.search.SetValue("")
			m.search.Blur()
			tab.cursor, tab.offset = 0, 0
			return m, nil
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		tab.cursor, tab.offset = 0, 0
		return m, cmd
	}

	items := tab.visible(m.search.Value())

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(keyMsg, keys.Left):
		if m.current > 0 {
			m.current--
			m.search.SetValue("")
		}

	case key.Matches(keyMsg, keys.Right):
		if m.current < len(m.tabs)-1 {
			m.current++
			m.search.SetValue("")
		}

	case key.Matches(keyMsg, keys.Up):
		if tab.cursor > 0 {
			tab.cursor--
		} else {
			tab.cursor = len(items) - 1
		}
		tab.scroll(len(items))

	case key.Matches(keyMsg, keys.Down):
		if tab.cursor < len(items)-1 {
			tab.cursor++
		} else {
			tab.cursor = 0
		}
		tab.scroll(len(items))

	case key.Matches(keyMsg, keys.Toggle):
		if tab.cursor < len(items) {
			id := items[tab.cursor].ID
			tab.selected[id] = !tab.selected[id]
		}

	case key.Matches(keyMsg, keys.All):
		all := true
		for _, item := range items {
			if !tab.selected[item.ID] {
				all = false
				break
			}
		}
		for _, item := range items {
			tab.selected[item.ID] = !all
		}

	case key.Matches(keyMsg, keys.Confirm):
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Underline(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

// View implements tea.Model
func (m Model) View() string {
	if m.done || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	names := make([]string, 0, len(m.tabs))
	for i := range m.tabs {
		tab := &m.tabs[i]
		style := faintStyle
		if i == m.current {
			style = activeStyle
		}
		names = append(names, style.Render(tab.Name)+" "+faintStyle.Render(fmt.Sprintf("(%d/%d)", tab.count(), len(tab.Items))))
	}
	b.WriteString(strings.Join(names, "  |  "))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 60))
	b.WriteString("\n")

	if m.searching {
		b.WriteString("\n/ ")
		b.WriteString(m.search.View())
		b.WriteString("\n")
	} else if m.search.Value() != "" {
		b.WriteString("\n")
		b.WriteString(faintStyle.Render(fmt.Sprintf("Filter: %s (/ to edit, esc to clear)", m.search.Value())))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.tabs) > 0 {
		m.renderItems(&b, &m.tabs[m.current])
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) renderItems(b *strings.Builder, tab *Tab) {
	items := tab.visible(m.search.Value())
	if len(items) == 0 {
		b.WriteString(faintStyle.Render("  (no items)"))
		b.WriteString("\n")
		return
	}

	if tab.offset > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  ↑ %d more above", tab.offset)))
		b.WriteString("\n")
	}

	end := min(tab.offset+maxVisibleItems, len(items))
	for i := tab.offset; i < end; i++ {
		item := items[i]
		cursor := "  "
		if i == tab.cursor {
			cursor = cursorStyle.Render("> ")
		}
		checked := "[ ]"
		if tab.selected[item.ID] {
			checked = selectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, checked, item.Label)
		if item.Description != "" {
			line += " " + faintStyle.Render(item.Description)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if rest := len(items) - end; rest > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  ↓ %d more below", rest)))
		b.WriteString("\n")
	}
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	All     key.Binding
	Search  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Toggle, k.All, k.Search, k.Confirm, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.All, k.Search, k.Confirm, k.Quit},
	}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Run shows the picker and returns the selected IDs per tab name. A nil map
// with a nil error means the user quit without confirming.
func Run(title string, tabs []Tab) (map[string][]string, error) {
	p := tea.NewProgram(New(title, tabs))

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(Model)
	if m.IsQuitting() {
		return nil, nil
	}
	return m.Selections(), nil
}
