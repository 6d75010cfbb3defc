package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	in, err := ParseInput(RawInput{Bill: "95000", Waste: "10", Shifts: "3", Solar: "false"})
	require.NoError(t, err)
	assert.True(t, in.MonthlyBill.Equal(dec("95000")))
	assert.Equal(t, 10, in.WasteTons)
	assert.Equal(t, 3, in.ShiftCount)
	assert.False(t, in.HasSolar)
}

func TestParseInputDefaults(t *testing.T) {
	in, err := ParseInput(RawInput{Bill: "80000", Waste: "0"})
	require.NoError(t, err)
	assert.Equal(t, DefaultShiftCount, in.ShiftCount)
	assert.False(t, in.HasSolar)
}

func TestParseInputGroupedNumbers(t *testing.T) {
	in, err := ParseInput(RawInput{Bill: "95\u00a0000", Waste: " 12 ", Solar: "Tak"})
	require.NoError(t, err)
	assert.True(t, in.MonthlyBill.Equal(dec("95000")))
	assert.Equal(t, 12, in.WasteTons)
	assert.True(t, in.HasSolar)
}

func TestParseInputRejectsNonNumeric(t *testing.T) {
	cases := []struct {
		raw   RawInput
		field string
	}{
		{RawInput{Bill: "abc", Waste: "1"}, FieldBill},
		{RawInput{Bill: "", Waste: "1"}, FieldBill},
		{RawInput{Bill: "-5", Waste: "1"}, FieldBill},
		{RawInput{Bill: "100", Waste: "x"}, FieldWaste},
		{RawInput{Bill: "100", Waste: "1", Shifts: "two"}, FieldShifts},
		{RawInput{Bill: "100", Waste: "1", Solar: "maybe"}, FieldSolar},
	}
	for _, tc := range cases {
		_, err := ParseInput(tc.raw)
		require.Error(t, err, "raw=%+v", tc.raw)
		assert.True(t, errors.Is(err, ErrInvalidInput))

		var inErr *InputError
		require.True(t, errors.As(err, &inErr))
		assert.Equal(t, tc.field, inErr.Field)
	}
}

func TestCoerceInputFallsBackToBaseline(t *testing.T) {
	in, errs := CoerceInput(RawInput{Bill: "NaN", Waste: "??", Shifts: "x", Solar: "perhaps"})
	assert.Len(t, errs, 4)
	assert.True(t, in.MonthlyBill.IsZero())
	assert.Equal(t, 0, in.WasteTons)
	assert.Equal(t, DefaultShiftCount, in.ShiftCount)
	assert.False(t, in.HasSolar)

	est, err := Compute(in)
	require.NoError(t, err)
	assert.True(t, est.TotalMonthlyBenefit.Equal(dec("15000")))
}

func TestCoerceInputKeepsValidFields(t *testing.T) {
	in, errs := CoerceInput(RawInput{Bill: "100000", Waste: "oops", Shifts: "2", Solar: "true"})
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrInvalidInput))
	assert.True(t, in.MonthlyBill.Equal(dec("100000")))
	assert.Equal(t, 2, in.ShiftCount)
	assert.True(t, in.HasSolar)
}
