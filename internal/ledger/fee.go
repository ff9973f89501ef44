// Package ledger holds the pure derivations behind fee collection, owner
// settlements and inventory stock. Nothing in here touches storage.
package ledger

import "github.com/shopspring/decimal"

// MonthsPerQuarter is the number of billed months in one academic quarter.
const MonthsPerQuarter = 3

var hundred = decimal.NewFromInt(100)

// QuarterlyDue returns the fee due for one quarter after applying the waiver
// percentage. Waivers are clamped to [0,100].
func QuarterlyDue(monthlyFee, waiverPercent float64) float64 {
	base := decimal.NewFromFloat(monthlyFee).Mul(decimal.NewFromInt(MonthsPerQuarter))
	waiver := clampPercent(waiverPercent)
	if waiver.IsPositive() {
		base = base.Sub(base.Mul(waiver).Div(hundred))
	}
	return toFloat(base)
}

// AnnualDue is the sum of the four quarterly dues.
func AnnualDue(monthlyFee, waiverPercent float64) float64 {
	quarter := decimal.NewFromFloat(QuarterlyDue(monthlyFee, waiverPercent))
	return toFloat(quarter.Mul(decimal.NewFromInt(QuartersPerYear)))
}

func clampPercent(p float64) decimal.Decimal {
	switch {
	case p <= 0:
		return decimal.Zero
	case p >= 100:
		return hundred
	default:
		return decimal.NewFromFloat(p)
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
