package config

import (
	"strconv"

	"github.com/upthermo/orcalc/internal/calculator"

	"github.com/shopspring/decimal"
)

// CalculatorParams merges the [calculator] overrides into the built-in
// formula constants. Rate keys that are not shift counts are ignored.
func CalculatorParams(cfg Config) calculator.Params {
	p := calculator.DefaultParams()
	c := cfg.Calculator

	if c.HeatBonusMonthly != nil && *c.HeatBonusMonthly >= 0 {
		p.HeatBonusMonthly = decimal.NewFromFloat(*c.HeatBonusMonthly)
	}
	if c.SolarBonus != nil {
		p.SolarBonus = decimal.NewFromFloat(*c.SolarBonus)
	}
	if c.FallbackRate != nil && *c.FallbackRate > 0 {
		p.FallbackRate = decimal.NewFromFloat(*c.FallbackRate)
	}

	for key, rate := range c.Rates {
		shifts, err := strconv.Atoi(key)
		if err != nil || rate < 0 {
			continue
		}
		p.BaseRates[shifts] = decimal.NewFromFloat(rate)
	}

	return p
}

// DefaultInput returns the calculator controls as configured for page load.
func DefaultInput(cfg Config) calculator.Input {
	shifts := cfg.General.DefaultShifts
	if shifts == 0 {
		shifts = calculator.DefaultShiftCount
	}
	bill := cfg.General.DefaultBill
	if bill < 0 {
		bill = 0
	}
	waste := cfg.General.DefaultWaste
	if waste < 0 {
		waste = 0
	}
	return calculator.Input{
		MonthlyBill: decimal.NewFromInt(bill),
		WasteTons:   waste,
		ShiftCount:  shifts,
		HasSolar:    cfg.General.DefaultSolar,
	}
}
