package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt
type ConfirmModel struct {
	question string
	answer   bool
	done     bool
}

// NewConfirm creates a prompt answered by def on enter
func NewConfirm(question string, def bool) ConfirmModel {
	return ConfirmModel{question: question, answer: def}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.answer, m.done = true, true
	case "n", "N", "q", "esc", "ctrl+c":
		m.answer, m.done = false, true
	case "enter":
		m.done = true
	case "left", "right", "tab", "h", "l":
		m.answer = !m.answer
		return m, nil
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}
	yes, no := dimStyle.Render(" Yes "), dimStyle.Render(" No ")
	if m.answer {
		yes = selectedStyle.Render("[Yes]")
	} else {
		no = selectedStyle.Render("[No]")
	}
	return titleStyle.Render(m.question) + "\n" + yes + "  " + no + "\n" +
		helpStyle.Render("[y/n] Answer  [←/→] Switch  [enter] Confirm")
}

// Answer reports the user's choice
func (m ConfirmModel) Answer() bool {
	return m.answer
}

// RunConfirm asks a yes/no question
func RunConfirm(question string, def bool) (bool, error) {
	p := tea.NewProgram(NewConfirm(question, def))
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	return finalModel.(ConfirmModel).Answer(), nil
}
