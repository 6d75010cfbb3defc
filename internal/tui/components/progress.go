package components

import (
	"fmt"

	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForShare colors a bar by how large a share of the maximum it is:
// the brand accent for the dominant series, muted tones below.
func ColorForShare(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return string(t.Accent)
	case pct >= 0.4:
		return string(t.Yellow)
	case pct >= 0.1:
		return string(t.Cyan)
	default:
		return string(t.TextMuted)
	}
}

// LabeledBar renders "label  ████░░░  note" using the bubbles progress
// component. pct is clamped to [0, 1].
func LabeledBar(label string, pct float64, note string, labelW, barWidth int) string {
	t := theme.Active

	pct = clamp01(pct)
	color := ColorForShare(pct)

	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	noteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render("  ") +
		noteStyle.Render(note)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
