package transform

import "github.com/shopspring/decimal"

// Round1 rounds v to one decimal place, half away from zero. Rounding works on
// the shortest decimal form of v, so 20055.55 becomes 20055.6 even though the
// nearest float is slightly below it.
func Round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
