package tui

import (
	"strings"

	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/production"
	"github.com/upthermo/orcalc/internal/tui/components"
	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// chartSeries converts the production datasets to chart series.
func chartSeries(c production.Chart) []components.Series {
	out := make([]components.Series, 0, len(c.Series))
	for _, s := range c.Series {
		values := make([]float64, len(s.Values))
		copy(values, s.Values[:])
		out = append(out, components.Series{
			Label:  s.Label,
			Values: values,
			Color:  lipgloss.Color(s.Color),
		})
	}
	return out
}

func (a App) renderProductionTab(cw, h int) string {
	t := theme.Active
	chart := production.Comparison()

	var b strings.Builder

	metrics := make([]components.Metric, 0, len(chart.Series)+1)
	for _, s := range chart.Series {
		metrics = append(metrics, components.Metric{
			Label: s.Label,
			Value: cli.FormatKWh(s.Total()),
			Note:  "szczyt " + cli.FormatKWh(s.Peak()),
			Color: lipgloss.Color(s.Color),
		})
	}
	orc, pv := chart.Series[0], chart.Series[1]
	metrics = append(metrics, components.Metric{
		Label: "Najsłabszy miesiąc",
		Value: weakestMonth(orc) + " / " + weakestMonth(pv),
		Note:  "ORC / PV",
	})
	cards := components.MetricCardRow(metrics, cw)

	chartH := h - lipgloss.Height(cards) - 7
	if chartH < 6 {
		chartH = 6
	}
	innerW := components.CardInnerWidth(cw)
	body := components.BarChart(chartSeries(chart), chart.Labels[:], innerW, chartH)

	b.WriteString(components.ContentCard(chart.Title, body, cw))
	b.WriteString("\n")
	b.WriteString(cards)

	noteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	b.WriteString("\n")
	b.WriteString(noteStyle.Render(" ORC pracuje na cieple odpadowym, więc produkcja nie zależy od pory roku."))

	return b.String()
}

// weakestMonth names the month with the lowest output of s.
func weakestMonth(s production.Series) string {
	idx := 0
	for i, v := range s.Values {
		if v < s.Values[idx] {
			idx = i
		}
	}
	return production.Months[idx]
}
