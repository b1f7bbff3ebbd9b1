// Package tui provides the interactive prompts used by lmagent install,
// uninstall and create-skill.
//
// This package uses the Bubble Tea framework. Each prompt is a small model
// with a Run function that returns plain values:
//
//	tools, err := tui.RunChecklist("Select tools", items)
//	method, err := tui.RunChoose("Install method", options)
//	ok, err := tui.RunConfirm("Remove 12 paths?", false)
//	values, err := tui.RunForm("New skill", fields)
//
// Every Run function returns ErrCancelled when the user quits. Callers fall
// back to the line-based prompts in plain.go when stdin or stdout is not a
// terminal.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - list and textinput components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
