// Package ui holds the lipgloss styles and the user-facing line helpers.
// Every helper degrades to plain text when stdout is not a terminal.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/kennyg/lmagent/internal/artifact"
)

// IsTTY indicates whether stdout is an interactive terminal.
// When false, UI functions produce plain text without colors or decorations.
var IsTTY = term.IsTerminal(os.Stdout.Fd())

// ═══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE
// ═══════════════════════════════════════════════════════════════════════════════

var (
	// Brand
	Indigo = lipgloss.Color("#6C5CE7")
	Violet = lipgloss.Color("#A29BFE")
	Teal   = lipgloss.Color("#00CEC9")

	// Status
	Green  = lipgloss.Color("#58D68D")
	Amber  = lipgloss.Color("#F5B041")
	Copper = lipgloss.Color("#DC7633")
	Pink   = lipgloss.Color("#FF6B9D")
	Blue   = lipgloss.Color("#5DADE2")
	Cyan   = lipgloss.Color("#76D7C4")

	// Neutrals
	White    = lipgloss.Color("#FDFEFE")
	Gray     = lipgloss.Color("#AAB7B8")
	DarkGray = lipgloss.Color("#5D6D7E")
	Black    = lipgloss.Color("#1C2833")
)

// ═══════════════════════════════════════════════════════════════════════════════
// TEXT STYLES
// ═══════════════════════════════════════════════════════════════════════════════

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	Subtitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	Success = lipgloss.NewStyle().
		Foreground(Green)

	Error = lipgloss.NewStyle().
		Foreground(Pink).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Copper)

	Info = lipgloss.NewStyle().
		Foreground(Blue)

	Muted = lipgloss.NewStyle().
		Foreground(Gray)

	Dim = lipgloss.NewStyle().
		Foreground(DarkGray)

	Highlight = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)

	Code = lipgloss.NewStyle().
		Foreground(Cyan)
)

var baseBadge = lipgloss.NewStyle().
	Padding(0, 1).
	Bold(true)

// TypeBadge returns the badge for an artifact type
func TypeBadge(t artifact.Type) string {
	label, icon, color := "SKILL", "✦", Indigo
	switch t {
	case artifact.TypeRule:
		label, icon, color = "RULE", "§", Blue
	case artifact.TypeWorkflow:
		label, icon, color = "FLOW", "↻", Teal
	}
	if !IsTTY {
		return "[" + label + "]"
	}
	return baseBadge.Background(color).Foreground(White).Render(icon + " " + label)
}

// StatusBadge renders an installer or doctor status word. Unknown words
// get a neutral badge.
func StatusBadge(status string) string {
	if !IsTTY {
		return "[" + status + "]"
	}
	color := DarkGray
	switch strings.ToUpper(status) {
	case "LINKED", "COPIED", "CREATED", "UPDATED", "OK", "REMOVED", "EXCISED":
		color = Green
	case "FALLBACK", "WARN", "NOTICE":
		color = Copper
	case "ERROR", "ISSUE":
		color = Pink
	case "SKIP", "INFO", "MISSING":
		color = Blue
	}
	return baseBadge.Background(color).Foreground(White).Render(status)
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGO
// ═══════════════════════════════════════════════════════════════════════════════

// Logo returns the banner shown by install and init
func Logo(version string) string {
	if !IsTTY {
		return fmt.Sprintf("\n  LMAGENT v%s - skills, rules and workflows for AI agents\n", version)
	}

	lines := []struct {
		text  string
		color lipgloss.Color
	}{
		{"", Black},
		{"   █░░ █▀▄▀█ ▄▀█ █▀▀ █▀▀ █▄░█ ▀█▀", Violet},
		{"   █▄▄ █░▀░█ █▀█ █▄█ ██▄ █░▀█ ░█░", Indigo},
		{"", Black},
	}

	var result strings.Builder
	for _, line := range lines {
		result.WriteString(lipgloss.NewStyle().Foreground(line.color).Render(line.text))
		result.WriteString("\n")
	}
	result.WriteString("   " + Muted.Render("v"+version+" · skills, rules and workflows for AI agents"))
	result.WriteString("\n")
	return result.String()
}

// ═══════════════════════════════════════════════════════════════════════════════
// LAYOUT
// ═══════════════════════════════════════════════════════════════════════════════

// Divider returns a horizontal divider
func Divider(width int) string {
	return Render(Dim, strings.Repeat("─", width))
}

// SectionHeader creates a decorated section header
func SectionHeader(title string) string {
	if !IsTTY {
		return fmt.Sprintf("=== %s ===", title)
	}

	width := min(TerminalWidth(), 80)
	titleLen := lipgloss.Width(title)
	padLeft := max((width-titleLen-6)/2, 2)
	padRight := max(width-titleLen-6-padLeft, 2)

	left := Dim.Render(strings.Repeat("─", padLeft) + "┤ ")
	right := Dim.Render(" ├" + strings.Repeat("─", padRight))
	return left + Title.Render(title) + right
}

// PageHeader creates a consistent page header
func PageHeader(title string) string {
	if !IsTTY {
		return "\n  " + title + "\n"
	}
	return fmt.Sprintf("\n  %s %s\n", Title.Render("◆"), Title.Render(title))
}

// PageFooter creates a page footer matching the header width
func PageFooter() string {
	if !IsTTY {
		return "\n"
	}
	width := min(TerminalWidth(), 80)
	padSide := (width - 5) / 2
	line := strings.Repeat("─", padSide) + " ◆ " + strings.Repeat("─", width-padSide-5)
	return "\n" + Dim.Render(line) + "\n"
}

// TableHeader creates a styled table header
func TableHeader(columns ...string) string {
	cells := make([]string, 0, len(columns))
	for _, col := range columns {
		cells = append(cells, Render(Subtitle, col))
	}
	return strings.Join(cells, "  ")
}

// TableRow creates a styled table row; the first column stands out
func TableRow(columns ...string) string {
	cells := make([]string, 0, len(columns))
	for i, col := range columns {
		style := lipgloss.NewStyle().Foreground(White)
		if i > 0 {
			style = Muted
		}
		cells = append(cells, Render(style, col))
	}
	return strings.Join(cells, "  ")
}

// ═══════════════════════════════════════════════════════════════════════════════
// STATUS LINES
// ═══════════════════════════════════════════════════════════════════════════════

// StatusLine creates a status line with icon and message
func StatusLine(icon, message string, color lipgloss.Color) string {
	if !IsTTY {
		return fmt.Sprintf("  %s %s", icon, message)
	}
	style := lipgloss.NewStyle().Foreground(color)
	return fmt.Sprintf("  %s %s", style.Render(icon), style.Render(message))
}

// SuccessLine creates a success status line
func SuccessLine(message string) string {
	if !IsTTY {
		return "  OK: " + message
	}
	return StatusLine("✓", message, Green)
}

// ErrorLine creates an error status line
func ErrorLine(message string) string {
	if !IsTTY {
		return "  ERROR: " + message
	}
	return StatusLine("✗", message, Pink)
}

// WarningLine creates a warning status line
func WarningLine(message string) string {
	if !IsTTY {
		return "  WARN: " + message
	}
	return StatusLine("!", message, Copper)
}

// InfoLine creates an info status line
func InfoLine(message string) string {
	if !IsTTY {
		return "  " + message
	}
	return StatusLine("→", message, Blue)
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// Truncate truncates text to max runes with an ellipsis
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max || max < 4 {
		return text
	}
	return string(runes[:max-3]) + "..."
}

// WrapText wraps text to fit within maxWidth, returning the lines
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= maxWidth:
			current.WriteString(" ")
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Render applies a lipgloss style to text, returning plain text in non-TTY environments
func Render(style lipgloss.Style, text string) string {
	if !IsTTY {
		return text
	}
	return style.Render(text)
}

// RenderMuted renders text in muted style (TTY-aware)
func RenderMuted(text string) string {
	return Render(Muted, text)
}

// RenderHighlight renders text in highlight style (TTY-aware)
func RenderHighlight(text string) string {
	return Render(Highlight, text)
}

// RenderSuccess renders text in success style (TTY-aware)
func RenderSuccess(text string) string {
	return Render(Success, text)
}

// RenderError renders text in error style (TTY-aware)
func RenderError(text string) string {
	return Render(Error, text)
}

// RenderWarning renders text in warning style (TTY-aware)
func RenderWarning(text string) string {
	return Render(Warning, text)
}

// RenderCode renders a command or path (TTY-aware)
func RenderCode(text string) string {
	return Render(Code, text)
}

// TerminalWidth returns the current terminal width, defaulting to 80 if unknown
func TerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
