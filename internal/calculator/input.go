package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is the error kind for malformed calculator input.
var ErrInvalidInput = errors.New("invalid input")

// Input field names, matching the page's form control names.
const (
	FieldBill   = "bill"
	FieldWaste  = "waste"
	FieldShifts = "shifts"
	FieldSolar  = "solar"
)

// InputError reports which field could not be parsed.
type InputError struct {
	Field string
	Value string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid %s", ErrInvalidInput, e.Value, e.Field)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// RawInput carries the calculator controls as the UI reports them.
type RawInput struct {
	Bill   string
	Waste  string
	Shifts string
	Solar  string
}

// ParseInput parses raw control values. Empty shifts and solar fall back to
// the page defaults (3 shifts, no PV); empty bill or waste are invalid.
func ParseInput(raw RawInput) (Input, error) {
	in, errs := parse(raw)
	if len(errs) > 0 {
		return Input{}, errs[0]
	}
	return in, nil
}

// CoerceInput parses raw control values and replaces every malformed field
// with its baseline (zero bill and waste, 3 shifts, no PV). The parse errors
// are returned for logging only.
func CoerceInput(raw RawInput) (Input, []error) {
	return parse(raw)
}

func parse(raw RawInput) (Input, []error) {
	in := Input{
		MonthlyBill: decimal.Zero,
		ShiftCount:  DefaultShiftCount,
	}
	var errs []error

	if bill, err := parseBill(raw.Bill); err != nil {
		errs = append(errs, err)
	} else {
		in.MonthlyBill = bill
	}

	if waste, err := parseWaste(raw.Waste); err != nil {
		errs = append(errs, err)
	} else {
		in.WasteTons = waste
	}

	if shifts, err := parseShifts(raw.Shifts); err != nil {
		errs = append(errs, err)
	} else {
		in.ShiftCount = shifts
	}

	if solar, err := parseSolar(raw.Solar); err != nil {
		errs = append(errs, err)
	} else {
		in.HasSolar = solar
	}

	return in, errs
}

func parseBill(s string) (decimal.Decimal, error) {
	s = normalizeNumber(s)
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, &InputError{Field: FieldBill, Value: s}
	}
	return d, nil
}

func parseWaste(s string) (int, error) {
	s = normalizeNumber(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &InputError{Field: FieldWaste, Value: s}
	}
	return n, nil
}

func parseShifts(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultShiftCount, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultShiftCount, &InputError{Field: FieldShifts, Value: s}
	}
	return n, nil
}

func parseSolar(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "nie", "no":
		return false, nil
	case "true", "1", "tak", "yes":
		return true, nil
	default:
		return false, &InputError{Field: FieldSolar, Value: s}
	}
}

// normalizeNumber strips spaces (including the pl-PL group separators) so
// "95 000" parses the same as "95000".
func normalizeNumber(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
}
