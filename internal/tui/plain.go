package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/pkg/errors"
)

// Interactive reports whether both stdin and stdout are terminals
func Interactive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// Plain asks the same questions as the Run functions, one line at a time.
// It serves pipes and dumb terminals.
type Plain struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlain reads answers from in and writes questions to out
func NewPlain(in io.Reader, out io.Writer) *Plain {
	return &Plain{in: bufio.NewReader(in), out: out}
}

func (p *Plain) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", ErrCancelled
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question; an empty answer means def
func (p *Plain) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes", "s", "si", "sí":
		return true, nil
	default:
		return false, nil
	}
}

// Checklist prints numbered items and reads a comma separated selection.
// "all" selects everything; an empty answer keeps the pre-checked items.
func (p *Plain) Checklist(title string, items []CheckItem) ([]string, error) {
	fmt.Fprintln(p.out, title)
	for i, it := range items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Fprintf(p.out, "  %2d. [%s] %s\n", i+1, mark, it.Label)
	}
	fmt.Fprint(p.out, "Numbers (e.g. 1,3), 'all', or enter for the marked items: ")

	answer, err := p.readLine()
	if err != nil {
		return nil, err
	}

	var keys []string
	switch strings.ToLower(answer) {
	case "":
		for _, it := range items {
			if it.Checked {
				keys = append(keys, it.Key)
			}
		}
		return keys, nil
	case "all", "a", "*":
		for _, it := range items {
			keys = append(keys, it.Key)
		}
		return keys, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(answer, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(items) {
			return nil, errors.Errorf("invalid selection %q", strings.TrimSpace(part))
		}
		if !seen[n] {
			seen[n] = true
			keys = append(keys, items[n-1].Key)
		}
	}
	return keys, nil
}

// Choose prints numbered options and reads one; empty picks the first
func (p *Plain) Choose(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", ErrCancelled
	}
	fmt.Fprintln(p.out, title)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d. %s  %s\n", i+1, o.Name, o.Help)
	}
	fmt.Fprint(p.out, "Choice [1]: ")

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return options[0].Key, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return "", errors.Errorf("invalid choice %q", answer)
	}
	return options[n-1].Key, nil
}

// Form asks for each field; an empty answer keeps the initial value
func (p *Plain) Form(title string, fields []Field) (map[string]string, error) {
	fmt.Fprintln(p.out, title)
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		for {
			if f.Value != "" {
				fmt.Fprintf(p.out, "%s [%s]: ", f.Label, f.Value)
			} else {
				fmt.Fprintf(p.out, "%s: ", f.Label)
			}
			answer, err := p.readLine()
			if err != nil {
				return nil, err
			}
			if answer == "" {
				answer = f.Value
			}
			if answer == "" && f.Required {
				continue
			}
			values[f.Key] = answer
			break
		}
	}
	return values, nil
}
