// Package leads validates contact-form submissions and hands them to sinks.
package leads

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/cli"
)

// Contact form field names.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldCompany = "company"
	FieldMessage = "message"
)

// Hidden calculator fields submitted with the contact form.
const (
	HiddenBill    = "calc-bill-monthly"
	HiddenWaste   = "calc-waste-daily"
	HiddenShifts  = "calc-shifts"
	HiddenSolar   = "calc-has_solar"
	HiddenSavings = "calc-savings-yearly"
)

// Field is one form control in document order.
type Field struct {
	Name     string
	Value    string
	Required bool
}

// Result reports which required fields were left blank.
type Result struct {
	Invalid      []string
	FirstInvalid string
}

// OK reports whether the form may be submitted.
func (r Result) OK() bool {
	return len(r.Invalid) == 0
}

// Has reports whether the named field failed validation.
func (r Result) Has(name string) bool {
	for _, n := range r.Invalid {
		if n == name {
			return true
		}
	}
	return false
}

// Validate marks every required field whose trimmed value is empty. The first
// one in form order is the one to focus.
func Validate(fields []Field) Result {
	var res Result
	for _, f := range fields {
		if !f.Required || strings.TrimSpace(f.Value) != "" {
			continue
		}
		res.Invalid = append(res.Invalid, f.Name)
		if res.FirstInvalid == "" {
			res.FirstInvalid = f.Name
		}
	}
	return res
}

// Summary is the calculator state copied into the contact form.
type Summary struct {
	Bill          string `json:"bill"`
	Waste         string `json:"waste"`
	Shifts        int    `json:"shifts"`
	Solar         string `json:"solar"`
	YearlySavings string `json:"yearly_savings"`
}

// Summarize formats an estimate into the hidden form values.
func Summarize(est calculator.Estimate) Summary {
	return Summary{
		Bill:          cli.FormatBill(est.MonthlyBill),
		Waste:         cli.FormatWaste(est.WasteTons),
		Shifts:        est.ShiftCount,
		Solar:         cli.FormatSolar(est.HasSolar),
		YearlySavings: cli.FormatMoney(est.YearlySavings),
	}
}

// Hidden returns the summary keyed by hidden field name.
func (s Summary) Hidden() map[string]string {
	return map[string]string{
		HiddenBill:    s.Bill,
		HiddenWaste:   s.Waste,
		HiddenShifts:  strconv.Itoa(s.Shifts),
		HiddenSolar:   s.Solar,
		HiddenSavings: s.YearlySavings,
	}
}

// RawInput reads the summary back as calculator input, dropping the unit
// suffixes of the display values ("95 000 PLN" becomes "95 000").
func (s Summary) RawInput() calculator.RawInput {
	unitless := func(v string) string {
		return strings.TrimSpace(strings.TrimRightFunc(strings.TrimSpace(v), unicode.IsLetter))
	}
	raw := calculator.RawInput{
		Bill:  unitless(s.Bill),
		Waste: unitless(s.Waste),
		Solar: strings.TrimSpace(s.Solar),
	}
	if s.Shifts != 0 {
		raw.Shifts = strconv.Itoa(s.Shifts)
	}
	return raw
}

// Or fills the empty fields of s from fallback.
func (s Summary) Or(fallback Summary) Summary {
	if s.Bill == "" {
		s.Bill = fallback.Bill
	}
	if s.Waste == "" {
		s.Waste = fallback.Waste
	}
	if s.Shifts == 0 {
		s.Shifts = fallback.Shifts
	}
	if s.Solar == "" {
		s.Solar = fallback.Solar
	}
	if s.YearlySavings == "" {
		s.YearlySavings = fallback.YearlySavings
	}
	return s
}

// OfferMessage is the message prefilled after "send my calculation".
func OfferMessage(s Summary) string {
	return fmt.Sprintf("Proszę o ofertę na podstawie moich wyliczeń:\n- Rachunek: %s\n- Odpady: %s\n- Przewidywana oszczędność: %s",
		s.Bill, s.Waste, s.YearlySavings)
}

// Lead is a validated contact-form submission.
type Lead struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message"`
	Summary   Summary   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// Fields lists the lead's controls in form order with the page's required
// flags.
func (l Lead) Fields() []Field {
	return []Field{
		{Name: FieldName, Value: l.Name, Required: true},
		{Name: FieldEmail, Value: l.Email, Required: true},
		{Name: FieldPhone, Value: l.Phone},
		{Name: FieldCompany, Value: l.Company},
		{Name: FieldMessage, Value: l.Message, Required: true},
	}
}

// Validate checks the lead's required fields.
func (l Lead) Validate() Result {
	return Validate(l.Fields())
}
