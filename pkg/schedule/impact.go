package schedule

import (
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/shopspring/decimal"
)

// Multiplier converts a per-occurrence amount into a monthly-equivalent one.
// It is kept as an exact fraction so that quarterly and yearly amounts divide
// cleanly (1200 yearly is exactly 100 monthly).
type Multiplier struct {
	Num int64
	Den int64
}

var multipliers = map[Frequency]Multiplier{
	Daily:     {Num: 30, Den: 1},
	Weekly:    {Num: 433, Den: 100},
	Biweekly:  {Num: 217, Den: 100},
	Monthly:   {Num: 1, Den: 1},
	Quarterly: {Num: 1, Den: 3},
	Yearly:    {Num: 1, Den: 12},
	Custom:    {Num: 1, Den: 1},
	Once:      {Num: 0, Den: 1},
}

// MonthlyMultiplier returns the multiplier for a frequency. Unknown
// frequencies contribute nothing.
func MonthlyMultiplier(f Frequency) Multiplier {
	if m, ok := multipliers[f]; ok {
		return m
	}
	return Multiplier{Num: 0, Den: 1}
}

// Decimal returns the multiplier as a decimal value.
func (m Multiplier) Decimal() decimal.Decimal {
	if m.Den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Num).DivRound(decimal.NewFromInt(m.Den), constants.DivisionPrecision)
}

// MonthlyImpact normalises a per-occurrence amount to its monthly equivalent.
func MonthlyImpact(amount decimal.Decimal, f Frequency) decimal.Decimal {
	m := MonthlyMultiplier(f)
	if m.Num == 0 || m.Den == 0 {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromInt(m.Num)).DivRound(decimal.NewFromInt(m.Den), constants.DivisionPrecision)
}
