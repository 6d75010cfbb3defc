package components

import (
	"strings"

	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // rune position of the shortcut letter in the name (-1 if not in name)
}

// Tabs mirrors the landing page sections.
var Tabs = []Tab{
	{Name: "Kalkulator", Key: 'k', KeyPos: 0},
	{Name: "Produkcja", Key: 'p', KeyPos: 0},
	{Name: "Wdrożenie", Key: 'w', KeyPos: 0},
	{Name: "Kontakt", Key: 'o', KeyPos: 1},
}

const tabGap = 2

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		name := []rune(tab.Name)
		var rendered string
		switch {
		case i == activeIdx:
			rendered = activeStyle.Render(tab.Name)
		case tab.KeyPos >= 0 && tab.KeyPos < len(name):
			before := string(name[:tab.KeyPos])
			key := string(name[tab.KeyPos])
			after := string(name[tab.KeyPos+1:])
			rendered = inactiveStyle.Render(before) +
				dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
				inactiveStyle.Render(after)
		default:
			rendered = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, rendered)
	}

	row := spaceStyle.Render(" ") + strings.Join(parts, spaceStyle.Render(strings.Repeat(" ", tabGap)))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabVisualWidth returns the rendered width of tab i when it is not
// active. The active tab is drawn without brackets.
func TabVisualWidth(i, activeIdx int) int {
	if i < 0 || i >= len(Tabs) {
		return 0
	}
	w := lipgloss.Width(Tabs[i].Name)
	if i != activeIdx {
		w += 2
	}
	return w
}

// TabAtX returns the tab index under column x of the rendered tab bar,
// or -1 when x falls between tabs or past the last one.
func TabAtX(x, activeIdx int) int {
	pos := 1 // leading space
	for i := range Tabs {
		w := TabVisualWidth(i, activeIdx)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + tabGap
	}
	return -1
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
