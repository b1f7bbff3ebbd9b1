package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

// ErrCancelled is returned when the user quits a prompt
var ErrCancelled = errors.New("cancelled")

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A29BFE")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A29BFE")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
