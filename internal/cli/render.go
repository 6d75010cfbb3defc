package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Palette, matching the upthermo TUI theme.
var (
	ColorBorder  = lipgloss.Color("#403E3C")
	ColorTextDim = lipgloss.Color("#575653")
	ColorText    = lipgloss.Color("#FFFCF0")
	ColorAccent  = lipgloss.Color("#FF6B35")
	ColorGreen   = lipgloss.Color("#879A39")
	ColorRed     = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" draws a separator. The first column is left aligned,
// the rest right aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	writeRule(&b, widths, "╭", "┬", "╮")
	if len(t.Headers) > 0 {
		writeRow(&b, t.Headers, widths, func(_ int, cell string, w int) string {
			return headerStyle.Render(fmt.Sprintf(" %-*s ", w, cell))
		})
		writeRule(&b, widths, "├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			writeRule(&b, widths, "├", "┼", "┤")
			continue
		}
		writeRow(&b, row, widths, func(i int, cell string, w int) string {
			if i == 0 {
				return valueStyle.Render(fmt.Sprintf(" %-*s ", w, cell))
			}
			return valueStyle.Render(fmt.Sprintf(" %*s ", w, cell))
		})
	}
	writeRule(&b, widths, "╰", "┴", "╯")

	return b.String()
}

// columnWidths measures cells in runes so Polish labels and the thin spaces
// in amounts keep columns aligned.
func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < numCols {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

func writeRule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, row []string, widths []int, cell func(i int, cell string, w int) string) {
	b.WriteString(dimStyle.Render("│"))
	for i, w := range widths {
		c := ""
		if i < len(row) {
			c = row[i]
		}
		b.WriteString(cell(i, c, w))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString(dimStyle.Render("│"))
	b.WriteString("\n")
}

// RenderHorizontalBar renders a horizontal bar scaled against maxValue,
// followed by the label.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := min(max(int(value/maxValue*float64(maxWidth)), 0), maxWidth)
	bar := strings.Repeat("█", barLen) + strings.Repeat(" ", maxWidth-barLen)
	return fmt.Sprintf("  %s  %s", headerStyle.Render(bar), valueStyle.Render(label))
}

// RenderMoney styles a formatted amount as a gain.
func RenderMoney(s string) string {
	return moneyStyle.Render(s)
}

// RenderLoss styles a formatted amount as a loss.
func RenderLoss(s string) string {
	return lossStyle.Render(s)
}

// RenderMuted styles secondary text.
func RenderMuted(s string) string {
	return dimStyle.Render(s)
}

// RenderHeader styles a section header.
func RenderHeader(s string) string {
	return headerStyle.Render(s)
}
