package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"github.com/webuildworld/webuild/internal/domain"
)

// brickItem is a selectable manifest entry
type brickItem struct {
	brick *domain.ComposeBrick
	added bool
}

// multiSelectModel is the bubbletea model for picking manifest entries
type multiSelectModel struct {
	items    []brickItem
	cursor   int
	selected map[int]bool
	title    string
	done     bool
}

func initialMultiSelectModel(items []brickItem, title string) multiSelectModel {
	selected := make(map[int]bool, len(items))
	for i, item := range items {
		// Entries added by an earlier run start unticked
		selected[i] = !item.added
	}
	return multiSelectModel{
		items:    items,
		selected: selected,
		title:    title,
	}
}

// Init is the initial command for bubbletea
func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses
func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := !m.allSelected()
		for i := range m.items {
			m.selected[i] = all
		}
	case "enter":
		if len(m.selectedIndices()) > 0 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m multiSelectModel) allSelected() bool {
	for i := range m.items {
		if !m.selected[i] {
			return false
		}
	}
	return true
}

func (m multiSelectModel) selectedIndices() []int {
	var indices []int
	for i := range m.items {
		if m.selected[i] {
			indices = append(indices, i)
		}
	}
	return indices
}

// View renders the list
func (m multiSelectModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for i, item := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}
		checkbox := color.New(color.FgWhite).Sprint("○")
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		}

		line := fmt.Sprintf("%s %s %s %s", cursor, checkbox,
			color.New(color.FgWhite, color.Bold).Sprint(item.brick.Name),
			color.New(color.FgYellow).Sprintf("(%s)", item.brick.Value))
		if item.added {
			line += color.New(color.Faint).Sprint(" added")
		}
		b.WriteString(line + "\n")
		if item.brick.Title != "" {
			b.WriteString("      " + color.New(color.Faint).Sprint(item.brick.Title) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))
	return b.String()
}

// SelectComposeBricks shows a multi-select over manifest entries and returns the chosen names.
// added marks entries a previous run already added.
func SelectComposeBricks(bricks []*domain.ComposeBrick, added map[string]bool, title string) ([]string, error) {
	if len(bricks) == 0 {
		return nil, fmt.Errorf("no bricks to select")
	}

	items := make([]brickItem, len(bricks))
	for i, b := range bricks {
		items[i] = brickItem{brick: b, added: added[b.Name]}
	}

	final, err := tea.NewProgram(initialMultiSelectModel(items, title)).Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}

	m := final.(multiSelectModel)
	if !m.done {
		return nil, fmt.Errorf("selection cancelled")
	}

	names := make([]string, 0, len(m.items))
	for _, i := range m.selectedIndices() {
		names = append(names, m.items[i].brick.Name)
	}
	return names, nil
}
