package cmd

import (
	"encoding/json"
	"testing"

	"github.com/upthermo/orcalc/internal/calculator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateJSONUsesNumbers(t *testing.T) {
	est, err := calculator.Compute(calculator.Input{MonthlyBill: decimal.NewFromInt(95000), WasteTons: 10, ShiftCount: 3})
	require.NoError(t, err)

	data, err := json.Marshal(newEstimateOutput(est))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 798000.0, out["yearly_savings"])
	assert.Equal(t, 0.7, out["savings_rate"])

	inaction, ok := out["inaction"].(map[string]any)
	require.True(t, ok)
	assert.IsType(t, 0.0, inaction["one_month"])
}
