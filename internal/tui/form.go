package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field is one text input of a form
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Value       string // Initial value
	Required    bool
}

// FormModel asks for each field in turn
type FormModel struct {
	title     string
	fields    []Field
	inputs    []textinput.Model
	step      int
	done      bool
	cancelled bool
}

// NewForm creates a form with the first field focused
func NewForm(title string, fields []Field) FormModel {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.SetValue(f.Value)
		ti.CharLimit = 256
		ti.Width = 60
		inputs[i] = ti
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	return FormModel{title: title, fields: fields, inputs: inputs}
}

func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEsc:
			// Esc steps back; on the first field it cancels
			if m.step == 0 {
				m.cancelled = true
				return m, tea.Quit
			}
			m.inputs[m.step].Blur()
			m.step--
			m.inputs[m.step].Focus()
			return m, textinput.Blink
		case tea.KeyEnter:
			if m.fields[m.step].Required && strings.TrimSpace(m.inputs[m.step].Value()) == "" {
				return m, nil
			}
			m.inputs[m.step].Blur()
			if m.step == len(m.inputs)-1 {
				m.done = true
				return m, tea.Quit
			}
			m.step++
			m.inputs[m.step].Focus()
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.inputs[m.step], cmd = m.inputs[m.step].Update(msg)
	return m, cmd
}

func (m FormModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	for i := 0; i < m.step; i++ {
		sb.WriteString(dimStyle.Render(m.fields[i].Label+": "+m.inputs[i].Value()) + "\n")
	}
	label := m.fields[m.step].Label
	if m.fields[m.step].Required {
		label += " *"
	}
	sb.WriteString(selectedStyle.Render(label) + "\n")
	sb.WriteString(m.inputs[m.step].View() + "\n")
	sb.WriteString(helpStyle.Render("[enter] Next  [esc] Back  [ctrl+c] Cancel"))
	return sb.String()
}

// Values returns the trimmed value of every field by key
func (m FormModel) Values() map[string]string {
	values := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		values[f.Key] = strings.TrimSpace(m.inputs[i].Value())
	}
	return values
}

// RunForm runs the form and returns the values by field key
func RunForm(title string, fields []Field) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}

	p := tea.NewProgram(NewForm(title, fields))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(FormModel)
	if m.cancelled {
		return nil, ErrCancelled
	}
	return m.Values(), nil
}
