package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Option is one choice of a single-select prompt
type Option struct {
	Key  string
	Name string
	Help string
}

func (o Option) Title() string       { return o.Name }
func (o Option) Description() string { return o.Help }
func (o Option) FilterValue() string { return o.Name }

// ChooseModel is the bubbletea model for a single-select list
type ChooseModel struct {
	list      list.Model
	chosen    *Option
	cancelled bool
}

// NewChoose creates a single-select prompt with the cursor on the first option
func NewChoose(title string, options []Option) ChooseModel {
	items := make([]list.Item, len(options))
	for i, o := range options {
		items[i] = o
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 60, len(options)*3+6)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return ChooseModel{list: l}
}

func (m ChooseModel) Init() tea.Cmd {
	return nil
}

func (m ChooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if o, ok := m.list.SelectedItem().(Option); ok {
				m.chosen = &o
				return m, tea.Quit
			}
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ChooseModel) View() string {
	if m.chosen != nil || m.cancelled {
		return ""
	}
	return m.list.View() + "\n" + helpStyle.Render("[enter] Select  [q] Cancel")
}

// RunChoose runs the prompt and returns the key of the chosen option
func RunChoose(title string, options []Option) (string, error) {
	switch len(options) {
	case 0:
		return "", ErrCancelled
	case 1:
		return options[0].Key, nil
	}

	p := tea.NewProgram(NewChoose(title, options))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	m := finalModel.(ChooseModel)
	if m.cancelled || m.chosen == nil {
		return "", ErrCancelled
	}
	return m.chosen.Key, nil
}
