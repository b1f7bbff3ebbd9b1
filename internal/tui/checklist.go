package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// CheckItem is one row of a checklist
type CheckItem struct {
	Key     string // Returned when selected
	Label   string
	Detail  string
	Checked bool
}

// ChecklistModel is the bubbletea model for a multi-select list
type ChecklistModel struct {
	title     string
	items     []CheckItem
	cursor    int
	done      bool
	cancelled bool
	height    int
}

// NewChecklist creates a checklist; items keep their Checked state
func NewChecklist(title string, items []CheckItem) ChecklistModel {
	return ChecklistModel{
		title:  title,
		items:  append([]CheckItem(nil), items...),
		height: 20,
	}
}

func (m ChecklistModel) Init() tea.Cmd {
	return nil
}

func (m ChecklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ", "x":
			if len(m.items) > 0 {
				m.items[m.cursor].Checked = !m.items[m.cursor].Checked
			}
		case "a":
			all := m.allChecked()
			for i := range m.items {
				m.items[i].Checked = !all
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ChecklistModel) allChecked() bool {
	for _, it := range m.items {
		if !it.Checked {
			return false
		}
	}
	return true
}

func (m ChecklistModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")

	// Keep the cursor inside a window of m.height rows
	start := 0
	if m.cursor >= m.height {
		start = m.cursor - m.height + 1
	}
	end := min(start+m.height, len(m.items))

	for i := start; i < end; i++ {
		it := m.items[i]
		box := "[ ]"
		if it.Checked {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, it.Label)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if it.Detail != "" {
			line += " " + dimStyle.Render(it.Detail)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render(fmt.Sprintf("[space] Toggle  [a] All  [enter] Confirm  [q] Cancel   %d selected", len(m.Selected()))))
	return sb.String()
}

// Selected returns the keys of the checked items, in list order
func (m ChecklistModel) Selected() []string {
	var keys []string
	for _, it := range m.items {
		if it.Checked {
			keys = append(keys, it.Key)
		}
	}
	return keys
}

// RunChecklist runs the checklist and returns the selected keys
func RunChecklist(title string, items []CheckItem) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	p := tea.NewProgram(NewChecklist(title, items))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(ChecklistModel)
	if m.cancelled {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}
