package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/tui/components"
	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	calcFieldBill = iota
	calcFieldWaste
	calcFieldShifts
	calcFieldSolar
	calcFieldCount // sentinel
)

const (
	minShifts = 1
	maxShifts = 3
)

// numberRunes are the characters the bill and waste inputs accept.
const numberRunes = "0123456789 ."

// calculatorState tracks the calculator tab: the four controls and the
// estimate derived from them.
type calculatorState struct {
	bill   textinput.Model
	waste  textinput.Model
	focus  int
	shifts int
	solar  bool

	est     calculator.Estimate
	summary leads.Summary
	invalid map[string]bool
}

func newNumberInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 14
	ti.Width = 16
	ti.Prompt = ""
	return ti
}

func newCalculatorState(in calculator.Input) calculatorState {
	s := calculatorState{
		bill:   newNumberInput("95000"),
		waste:  newNumberInput("10"),
		focus:  calcFieldBill,
		shifts: in.ShiftCount,
		solar:  in.HasSolar,
	}
	s.bill.SetValue(in.MonthlyBill.String())
	s.waste.SetValue(strconv.Itoa(in.WasteTons))
	s.applyFocus()
	return s
}

// applyFocus moves the text cursor to the focused input, if any.
func (s *calculatorState) applyFocus() {
	s.bill.Blur()
	s.waste.Blur()
	switch s.focus {
	case calcFieldBill:
		s.bill.Focus()
	case calcFieldWaste:
		s.waste.Focus()
	}
}

func (s calculatorState) focusCmd() tea.Cmd {
	if s.focus == calcFieldBill || s.focus == calcFieldWaste {
		return textinput.Blink
	}
	return nil
}

// raw reports the controls the way the landing page form submits them.
func (s calculatorState) raw() calculator.RawInput {
	return calculator.RawInput{
		Bill:   s.bill.Value(),
		Waste:  s.waste.Value(),
		Shifts: strconv.Itoa(s.shifts),
		Solar:  strconv.FormatBool(s.solar),
	}
}

// recompute coerces malformed controls to their baseline and re-runs the
// calculator.
func (s *calculatorState) recompute(calc *calculator.Calculator) {
	in, errs := calculator.CoerceInput(s.raw())

	s.invalid = make(map[string]bool, len(errs))
	for _, err := range errs {
		var ie *calculator.InputError
		if errors.As(err, &ie) {
			s.invalid[ie.Field] = true
		}
	}

	est, err := calc.Estimate(in)
	if err != nil {
		est, _ = calc.Estimate(calculator.Input{MonthlyBill: decimal.Zero, ShiftCount: s.shifts})
	}
	s.est = est
	s.summary = leads.Summarize(est)
}

// updateInputs forwards non-key messages (cursor blink) to the focused input.
func (s calculatorState) updateInputs(msg tea.Msg) (calculatorState, tea.Cmd) {
	var cmd tea.Cmd
	switch s.focus {
	case calcFieldBill:
		s.bill, cmd = s.bill.Update(msg)
	case calcFieldWaste:
		s.waste, cmd = s.waste.Update(msg)
	}
	return s, cmd
}

// editsNumber reports whether msg edits a numeric input rather than
// triggering a shortcut.
func editsNumber(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyHome, tea.KeyEnd,
		tea.KeyCtrlA, tea.KeyCtrlE, tea.KeyCtrlU, tea.KeyCtrlK, tea.KeyCtrlW:
		return true
	case tea.KeyRunes, tea.KeySpace:
		if len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if !strings.ContainsRune(numberRunes, r) {
				return false
			}
		}
		return true
	}
	return false
}

// updateCalculator handles calculator keys. handled is false when the key
// should fall through to the global bindings.
func (a App) updateCalculator(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	s := &a.calcState
	key := msg.String()

	switch key {
	case "up":
		if s.focus > 0 {
			s.focus--
		}
		s.applyFocus()
		return a, s.focusCmd(), true
	case "down", "enter":
		if key == "enter" && s.focus == calcFieldSolar {
			s.solar = !s.solar
			a.recompute()
			return a, nil, true
		}
		if s.focus < calcFieldCount-1 {
			s.focus++
		}
		s.applyFocus()
		return a, s.focusCmd(), true
	case "s":
		m, cmd := a.openContactForm(true)
		return m, cmd, true
	}

	switch s.focus {
	case calcFieldBill, calcFieldWaste:
		if !editsNumber(msg) {
			return a, nil, false
		}
		var cmd tea.Cmd
		*s, cmd = s.updateInputs(msg)
		a.recompute()
		return a, cmd, true

	case calcFieldShifts:
		switch key {
		case "h", "left":
			if s.shifts > minShifts {
				s.shifts--
			}
		case "l", "right":
			if s.shifts < maxShifts {
				s.shifts++
			}
		case "1", "2", "3":
			s.shifts = int(key[0] - '0')
		default:
			return a, nil, false
		}
		a.recompute()
		return a, nil, true

	case calcFieldSolar:
		switch key {
		case " ", "h", "l", "left", "right":
			s.solar = !s.solar
			a.recompute()
			return a, nil, true
		}
	}
	return a, nil, false
}

func (a App) renderCalculatorTab(cw int) string {
	t := theme.Active
	s := a.calcState
	est := s.est

	var b strings.Builder

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Parametry zakładu", s.renderControls(), widths[0]),
		components.ContentCard("Koszt zaniechania", renderInaction(est.Inaction()), widths[1]),
	}))
	b.WriteString("\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Oszczędność roczna", Value: cli.FormatMoney(est.YearlySavings), Note: cli.FormatRate(est.SavingsRate) + " rachunku", Color: t.GreenBright},
		{Label: "Oszczędność miesięczna", Value: cli.FormatMoney(est.MonthlySavings)},
		{Label: "Korzyść miesięczna", Value: cli.FormatMoney(est.TotalMonthlyBenefit), Note: "+" + cli.FormatMoney(est.HeatBonusMonthly) + " ciepła"},
		{Label: "Rachunek roczny", Value: cli.FormatMoney(est.CurrentYearlyBill)},
	}, cw))
	b.WriteString("\n")

	before, figure, after := cli.ContextParts(est)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background)
	figureStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true)
	bonusStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Background)

	b.WriteString(textStyle.Render(" " + before))
	b.WriteString(figureStyle.Render(figure))
	b.WriteString(textStyle.Render(after))
	b.WriteString("\n")
	for _, bonus := range cli.Bonuses(s.solar) {
		b.WriteString(bonusStyle.Render(" ✓ " + bonus))
		b.WriteString("\n")
	}

	return b.String()
}

func (s calculatorState) renderControls() string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	focusStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	marker := func(field int) string {
		if s.focus == field {
			return focusStyle.Render("› ")
		}
		return labelStyle.Render("  ")
	}
	invalid := func(field string) string {
		if s.invalid[field] {
			return errStyle.Render("  nieprawidłowa wartość, liczę 0")
		}
		return ""
	}

	var b strings.Builder

	b.WriteString(marker(calcFieldBill) + labelStyle.Render("Miesięczny rachunek (PLN)"))
	b.WriteString("\n  ")
	b.WriteString(s.bill.View() + invalid(calculator.FieldBill))
	b.WriteString("\n")

	b.WriteString(marker(calcFieldWaste) + labelStyle.Render("Odpady dziennie (tony)"))
	b.WriteString("\n  ")
	b.WriteString(s.waste.View() + invalid(calculator.FieldWaste))
	b.WriteString("\n")

	b.WriteString(marker(calcFieldShifts) + labelStyle.Render("Tryb pracy"))
	b.WriteString("\n  ")
	for n := minShifts; n <= maxShifts; n++ {
		label := fmt.Sprintf(" %d ", n)
		if n == s.shifts {
			b.WriteString(focusStyle.Render("[" + strings.TrimSpace(label) + "]"))
		} else {
			b.WriteString(dimStyle.Render(label))
		}
		b.WriteString(labelStyle.Render(" "))
	}
	b.WriteString(dimStyle.Render(shiftLabel(s.shifts)))
	b.WriteString("\n")

	b.WriteString(marker(calcFieldSolar) + labelStyle.Render("Fotowoltaika"))
	b.WriteString("\n  ")
	check := "[ ]"
	if s.solar {
		check = "[x]"
	}
	b.WriteString(valueStyle.Render(check + " " + cli.FormatSolar(s.solar)))

	return b.String()
}

func shiftLabel(n int) string {
	switch n {
	case 1:
		return "1 zmiana"
	case 3:
		return "3 zmiany (24/7)"
	default:
		return fmt.Sprintf("%d zmiany", n)
	}
}

func renderInaction(in calculator.Inaction) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	lossStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Każdy dzień zwłoki", in.Daily},
		{"1 miesiąc", in.OneMonth},
		{"6 miesięcy", in.SixMonths},
		{"12 miesięcy", in.TwelveMonths},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", r.label)))
		b.WriteString(lossStyle.Render(cli.FormatLoss(r.value)))
	}
	return b.String()
}
