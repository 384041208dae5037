package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tolerance is the smallest currency amount treated as non-zero.
const Tolerance = 0.01

// roundingBias nudges values like 2.675 (stored as 2.67499999...) over the
// half-cent boundary before rounding.
const roundingBias = 1e-9

// Round2 rounds x to cents, half away from zero.
func Round2(x float64) float64 {
	d := decimal.NewFromFloat(math.Abs(x) + roundingBias).Round(2)
	if d.IsZero() {
		return 0
	}
	f, _ := d.Float64()
	return math.Copysign(f, x)
}

// floorCents rounds a non-negative x down to cents.
func floorCents(x float64) float64 {
	f, _ := decimal.NewFromFloat(x + roundingBias).Truncate(2).Float64()
	return f
}

// IsZero reports whether x is zero once rounded to cents.
func IsZero(x float64) bool {
	return math.Abs(Round2(x)) < Tolerance
}

// SumBalances adds up a balance map, rounded to cents.
func SumBalances(balances map[string]float64) float64 {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(decimal.NewFromFloat(b))
	}
	f, _ := sum.Round(2).Float64()
	if f == 0 {
		return 0
	}
	return f
}
