// Package calculator computes ORC savings projections from the landing-page
// calculator inputs. All arithmetic is done in decimal so rates and amounts
// stay exact until display formatting.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultShiftCount is the shift selector value checked on page load.
const DefaultShiftCount = 3

var (
	monthsPerYear = decimal.NewFromInt(12)
	daysPerMonth  = decimal.NewFromInt(30)

	millionThreshold     = decimal.NewFromInt(1_000_000)
	halfMillionThreshold = decimal.NewFromInt(500_000)
)

// Params holds the tunable constants of the savings formula.
type Params struct {
	// BaseRates maps a shift count to its base savings rate.
	BaseRates map[int]decimal.Decimal
	// FallbackRate applies to shift counts missing from BaseRates.
	FallbackRate decimal.Decimal
	// SolarBonus is added to the rate when the plant already runs PV.
	SolarBonus decimal.Decimal
	// HeatBonusMonthly is the fixed monthly value of recovered process heat.
	HeatBonusMonthly decimal.Decimal
}

// DefaultParams returns the published rate table: 60/65/70% by shift count,
// +5% with solar, and a 15 000 zł/month heat-recovery bonus.
func DefaultParams() Params {
	return Params{
		BaseRates: map[int]decimal.Decimal{
			1: decimal.RequireFromString("0.60"),
			2: decimal.RequireFromString("0.65"),
			3: decimal.RequireFromString("0.70"),
		},
		FallbackRate:     decimal.RequireFromString("0.60"),
		SolarBonus:       decimal.RequireFromString("0.05"),
		HeatBonusMonthly: decimal.NewFromInt(15000),
	}
}

// Input holds the four calculator inputs.
type Input struct {
	MonthlyBill decimal.Decimal `json:"monthly_bill"`
	WasteTons   int             `json:"waste_tons"`
	ShiftCount  int             `json:"shift_count"`
	HasSolar    bool            `json:"has_solar"`
}

// Estimate is the result of one calculation. It is a value: recompute it on
// every input change instead of mutating it.
type Estimate struct {
	Input

	SavingsRate         decimal.Decimal `json:"savings_rate"`
	MonthlySavings      decimal.Decimal `json:"monthly_savings"`
	YearlySavings       decimal.Decimal `json:"yearly_savings"`
	CurrentYearlyBill   decimal.Decimal `json:"current_yearly_bill"`
	HeatBonusMonthly    decimal.Decimal `json:"heat_bonus_monthly"`
	TotalMonthlyBenefit decimal.Decimal `json:"total_monthly_benefit"`
}

// Inaction is the "cost of inaction" series: benefit forgone by waiting.
type Inaction struct {
	Daily        decimal.Decimal `json:"daily"`
	OneMonth     decimal.Decimal `json:"one_month"`
	SixMonths    decimal.Decimal `json:"six_months"`
	TwelveMonths decimal.Decimal `json:"twelve_months"`
}

// Tier selects the wording of the yearly savings context sentence.
type Tier int

const (
	// TierThousands covers yearly savings below 500 000.
	TierThousands Tier = iota
	// TierHalfMillion covers 500 000 up to (not including) 1 000 000.
	TierHalfMillion
	// TierMillions covers 1 000 000 and above.
	TierMillions
)

func (t Tier) String() string {
	switch t {
	case TierMillions:
		return "millions"
	case TierHalfMillion:
		return "half-million"
	default:
		return "thousands"
	}
}

// Calculator evaluates the savings formula with a fixed set of Params.
type Calculator struct {
	params Params
}

// New returns a Calculator using p. Missing values fall back to DefaultParams.
func New(p Params) *Calculator {
	def := DefaultParams()
	if p.BaseRates == nil {
		p.BaseRates = def.BaseRates
	}
	if p.FallbackRate.IsZero() {
		p.FallbackRate = def.FallbackRate
	}
	return &Calculator{params: p}
}

// Params returns the parameters in use.
func (c *Calculator) Params() Params {
	return c.params
}

// Rate returns the savings rate for a shift count and solar flag.
func (c *Calculator) Rate(shiftCount int, hasSolar bool) decimal.Decimal {
	rate, ok := c.params.BaseRates[shiftCount]
	if !ok {
		rate = c.params.FallbackRate
	}
	if hasSolar {
		rate = rate.Add(c.params.SolarBonus)
	}
	return rate
}

// Estimate computes the savings projection for in. A negative bill is
// rejected with ErrInvalidInput.
func (c *Calculator) Estimate(in Input) (Estimate, error) {
	if in.MonthlyBill.IsNegative() {
		return Estimate{}, &InputError{Field: FieldBill, Value: in.MonthlyBill.String()}
	}
	if in.WasteTons < 0 {
		return Estimate{}, &InputError{Field: FieldWaste, Value: fmt.Sprint(in.WasteTons)}
	}

	rate := c.Rate(in.ShiftCount, in.HasSolar)
	monthly := in.MonthlyBill.Mul(rate)

	return Estimate{
		Input:               in,
		SavingsRate:         rate,
		MonthlySavings:      monthly,
		YearlySavings:       monthly.Mul(monthsPerYear),
		CurrentYearlyBill:   in.MonthlyBill.Mul(monthsPerYear),
		HeatBonusMonthly:    c.params.HeatBonusMonthly,
		TotalMonthlyBenefit: monthly.Add(c.params.HeatBonusMonthly),
	}, nil
}

var defaultCalculator = New(DefaultParams())

// Compute runs the default calculator.
func Compute(in Input) (Estimate, error) {
	return defaultCalculator.Estimate(in)
}

// Inaction derives the cost-of-inaction series from the monthly benefit.
func (e Estimate) Inaction() Inaction {
	total := e.TotalMonthlyBenefit
	return Inaction{
		Daily:        total.Div(daysPerMonth),
		OneMonth:     total,
		SixMonths:    total.Mul(decimal.NewFromInt(6)),
		TwelveMonths: total.Mul(monthsPerYear),
	}
}

// Tier classifies the yearly savings for the context sentence.
func (e Estimate) Tier() Tier {
	return TierFor(e.YearlySavings)
}

// TierFor classifies a yearly savings amount.
func TierFor(yearly decimal.Decimal) Tier {
	switch {
	case yearly.GreaterThanOrEqual(millionThreshold):
		return TierMillions
	case yearly.GreaterThanOrEqual(halfMillionThreshold):
		return TierHalfMillion
	default:
		return TierThousands
	}
}
