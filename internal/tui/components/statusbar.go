package components

import (
	"strings"

	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// DefaultHint is the key legend shown when a tab has nothing better to say.
const DefaultHint = " [?]pomoc  [q]wyjście"

// RenderStatusBar renders the bottom status bar: the key hint on the left
// and right-aligned status text.
func RenderStatusBar(width int, hint, right string) string {
	t := theme.Active

	if hint == "" {
		hint = DefaultHint
	}
	if right != "" {
		right += " "
	}

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	padding := width - lipgloss.Width(hint) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(hint + strings.Repeat(" ", padding) + right)
}
