package ledger

import "github.com/shopspring/decimal"

// PercentageChange is the change from previous to current in percent,
// rounded to two decimals. It is zero when previous is not positive.
func PercentageChange(previous, current float64) float64 {
	if previous <= 0 {
		return 0
	}
	prev := decimal.NewFromFloat(previous)
	return toFloat(decimal.NewFromFloat(current).Sub(prev).Div(prev).Mul(hundred))
}
