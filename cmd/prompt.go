package cmd

import (
	"fmt"
	"os"

	"github.com/kennyg/lmagent/internal/tui"
	"github.com/kennyg/lmagent/internal/ui"
)

// prompter asks the user questions. The terminal version runs bubbletea
// programs; the plain version reads numbered answers from stdin.
type prompter interface {
	Confirm(question string, def bool) (bool, error)
	Checklist(title string, items []tui.CheckItem) ([]string, error)
	Choose(title string, options []tui.Option) (string, error)
	Form(title string, fields []tui.Field) (map[string]string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Confirm(question string, def bool) (bool, error) {
	return tui.RunConfirm(question, def)
}

func (terminalPrompter) Checklist(title string, items []tui.CheckItem) ([]string, error) {
	return tui.RunChecklist(title, items)
}

func (terminalPrompter) Choose(title string, options []tui.Option) (string, error) {
	return tui.RunChoose(title, options)
}

func (terminalPrompter) Form(title string, fields []tui.Field) (map[string]string, error) {
	return tui.RunForm(title, fields)
}

// newPrompter picks the bubbletea prompts on a terminal, plain line
// prompts otherwise
func newPrompter() prompter {
	if tui.Interactive() {
		return terminalPrompter{}
	}
	return tui.NewPlain(os.Stdin, os.Stdout)
}

// exitIfCancelled ends the command quietly when the user backed out of a prompt
func exitIfCancelled(err error) {
	if err == nil {
		return
	}
	if err == tui.ErrCancelled {
		fmt.Println(ui.Muted.Render("  Cancelled."))
		os.Exit(130)
	}
	exitWithError(err.Error())
}
