package domain

import "math"

// SalePrice applies a percentage discount to base and rounds to cents.
// A zero discount returns base unchanged.
func SalePrice(base, discountPct float64) (float64, error) {
	if base < 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		return 0, ErrInvalidPrice
	}
	if discountPct < 0 || discountPct > 100 || math.IsNaN(discountPct) {
		return 0, ErrInvalidDiscount
	}
	if discountPct == 0 {
		return base, nil
	}
	return roundCents(base - base*discountPct/100), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
