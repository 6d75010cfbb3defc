// Package cli provides formatting and rendering utilities for terminal and
// page output of savings estimates.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/upthermo/orcalc/internal/calculator"

	"github.com/shopspring/decimal"
)

const (
	// GroupSeparator is the pl-PL thousands separator (no-break space).
	GroupSeparator = "\u00a0"
	// MinusSign prefixes cost-of-inaction figures.
	MinusSign = "\u2212"

	currencySuffix = " zł"
	billSuffix     = " PLN"
	wasteSuffix    = " ton"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// FormatNumber groups the digits of an integer the pl-PL way.
// e.g., 1140000 -> "1 140 000", 2717 -> "2717"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

// groupDigits inserts group separators into a run of digits. Polish
// formatting leaves four-digit numbers ungrouped.
func groupDigits(s string) string {
	if len(s) <= 4 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteString(GroupSeparator)
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDecimal formats d with pl-PL grouping, a decimal comma and at most
// maxFrac fraction digits (trailing zeros dropped).
func FormatDecimal(d decimal.Decimal, maxFrac int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.Round(maxFrac).StringFixed(maxFrac)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	out := sign + groupDigits(intPart)
	if frac != "" {
		out += "," + frac
	}
	return out
}

// FormatMoney rounds to whole złoty and appends the currency suffix.
// e.g., 66500 -> "66 500 zł"
func FormatMoney(amount decimal.Decimal) string {
	return FormatDecimal(amount, 0) + currencySuffix
}

// FormatLoss formats a forgone amount with a leading minus sign.
func FormatLoss(amount decimal.Decimal) string {
	return MinusSign + FormatMoney(amount)
}

// FormatBill formats the monthly bill label. e.g., 95000 -> "95 000 PLN"
func FormatBill(bill decimal.Decimal) string {
	return FormatDecimal(bill, 3) + billSuffix
}

// FormatWaste formats the waste tonnage label.
func FormatWaste(tons int) string {
	return strconv.Itoa(tons) + wasteSuffix
}

// FormatRate formats a savings rate as a whole percentage.
// e.g., 0.75 -> "75%"
func FormatRate(rate decimal.Decimal) string {
	return rate.Shift(2).Round(1).String() + "%"
}

// FormatSolar renders the PV flag the way the lead form stores it.
func FormatSolar(hasSolar bool) string {
	if hasSolar {
		return "Tak"
	}
	return "Nie"
}

// contextFigure returns the highlighted part of the context sentence and the
// text around it for the estimate's tier.
func contextFigure(est calculator.Estimate) (before, figure, after string) {
	yearly := est.YearlySavings
	switch est.Tier() {
	case calculator.TierMillions:
		mln := strings.Replace(yearly.Div(million).StringFixed(1), ".", ",", 1)
		return "To ponad ", mln + " mln zł", " rocznie"
	case calculator.TierHalfMillion:
		return "To ponad ", "pół miliona złotych", " rocznie"
	default:
		k := yearly.Div(thousand).Round(0).String()
		return "To ", k + " tys. zł", " oszczędności rocznie"
	}
}

// ContextSentence returns the plain-text sentence putting the yearly savings
// in context.
func ContextSentence(est calculator.Estimate) string {
	before, figure, after := contextFigure(est)
	return before + figure + after
}

// ContextParts exposes the sentence pieces so renderers can emphasize the
// figure.
func ContextParts(est calculator.Estimate) (before, figure, after string) {
	return contextFigure(est)
}

// ContextHTML returns the context sentence with the figure in <strong>.
func ContextHTML(est calculator.Estimate) string {
	before, figure, after := contextFigure(est)
	return fmt.Sprintf("%s<strong>%s</strong>%s", before, figure, after)
}

// Bonuses lists the extra benefits shown under the result.
func Bonuses(hasSolar bool) []string {
	bonuses := []string{"Ciepło procesowe w cenie"}
	if hasSolar {
		bonuses = append(bonuses, "Uzupełnienie istniejącej instalacji PV")
	}
	return bonuses
}

// FormatKWh formats an energy amount. e.g., 170000 -> "170 000 kWh"
func FormatKWh(kwh float64) string {
	return FormatDecimal(decimal.NewFromFloat(kwh), 0) + " kWh"
}
