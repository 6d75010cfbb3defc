package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Series is one set of bars in a BarChart.
type Series struct {
	Label  string
	Values []float64
	Color  lipgloss.Color
}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// BarChart renders grouped vertical bars, one group per label and one bar
// per series inside each group, with a y-axis and a legend.
func BarChart(series []Series, labels []string, width, height int) string {
	if len(series) == 0 || len(series[0].Values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(series[0].Values, series[0].Color)
	}

	t := theme.Active

	n := len(series[0].Values)
	maxVal := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y-axis: compute tick step and ceiling
	tickStep := chartTickStep(maxVal)
	maxIntervals := height / 2
	if maxIntervals < 2 {
		maxIntervals = 2
	}
	for {
		k := int(math.Ceil(maxVal / tickStep))
		if k <= maxIntervals {
			break
		}
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := int(math.Round(ceiling / tickStep))
	if numIntervals < 1 {
		numIntervals = 1
	}

	rowsPerTick := height / numIntervals
	if rowsPerTick < 2 {
		rowsPerTick = 2
	}
	chartH := rowsPerTick * numIntervals

	yLabelW := len(formatChartLabel(ceiling)) + 1
	if yLabelW < 4 {
		yLabelW = 4
	}
	tickLabels := make(map[int]string)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	chartW := width - yLabelW - 1
	if chartW < 5 {
		chartW = 5
	}

	// Group sizing: each group holds one bar per series, groups are
	// separated by a single gap column.
	perGroup := len(series)
	gap := 1
	groupW := (chartW - (n - 1)) / n
	barW := groupW / perGroup
	if barW < 1 {
		barW = 1
	}
	if barW > 4 {
		barW = 4
	}
	groupW = barW * perGroup
	axisLen := n*groupW + (n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)
	barStyles := make([]lipgloss.Style, len(series))
	for i, s := range series {
		barStyles[i] = lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface)
	}

	var b strings.Builder

	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString(blankStyle.Render(strings.Repeat(" ", gap)))
			}
			for si, s := range series {
				v := 0.0
				if i < len(s.Values) {
					v = s.Values[i]
				}
				switch {
				case v >= rowTop:
					b.WriteString(barStyles[si].Render(strings.Repeat("█", barW)))
				case v > rowBottom:
					frac := (v - rowBottom) / (rowTop - rowBottom)
					idx := int(frac * 8)
					if idx > 8 {
						idx = 8
					}
					if idx < 1 {
						idx = 1
					}
					b.WriteString(barStyles[si].Render(strings.Repeat(string(blocks[idx]), barW)))
				default:
					b.WriteString(blankStyle.Render(strings.Repeat(" ", barW)))
				}
			}
		}
		b.WriteString("\n")
	}

	// X-axis line with 0 label
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, groupW, gap, axisLen)))
	}

	// Legend
	if len(series) > 1 || series[0].Label != "" {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		for i, s := range series {
			if i > 0 {
				b.WriteString(blankStyle.Render("   "))
			}
			b.WriteString(barStyles[i].Render("█"))
			b.WriteString(axisStyle.Render(" " + s.Label))
		}
	}

	return b.String()
}

// xAxisLabels places labels under their groups, skipping any that would
// overlap the previous one. Labels are measured in runes.
func xAxisLabels(labels []string, groupW, gap, axisLen int) string {
	buf := make([]rune, axisLen)
	for i := range buf {
		buf[i] = ' '
	}

	lastEnd := -1
	for i, lbl := range labels {
		pos := i * (groupW + gap)
		r := []rune(lbl)
		if pos <= lastEnd || pos >= axisLen {
			continue
		}
		end := pos + len(r)
		if end > axisLen {
			end = axisLen
			r = r[:end-pos]
		}
		copy(buf[pos:end], r)
		lastEnd = end
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
