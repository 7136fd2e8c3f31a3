package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	tipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// colorEnabled reports whether stdout is a terminal that can take color.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func render(style lipgloss.Style, text string) string {
	if !colorEnabled() {
		return text
	}
	return style.Render(text)
}

// WarnStyle colors warning text
func WarnStyle(text string) string { return render(warnStyle, text) }

// TipStyle colors tip text
func TipStyle(text string) string { return render(tipStyle, text) }

// DimStyle makes text dim/gray
func DimStyle(text string) string { return render(dimStyle, text) }

// BranchStyle colors a branch name
func BranchStyle(text string) string { return render(branchStyle, text) }

// ErrorStyle colors error text
func ErrorStyle(text string) string { return render(errorStyle, text) }
