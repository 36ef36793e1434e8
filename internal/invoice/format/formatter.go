// Package format holds presentation helpers for invoice documents.
// Everything here is pure and deterministic.
package format

import (
	"fmt"
	"math"
	"strings"
)

// RoundCurrency rounds to 2 decimals, half away from zero. Applied once
// at final-total and presentation time; never inside charge math, so
// rounding error does not compound across items.
func RoundCurrency(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// BRL renders a value as Brazilian currency: R$ 1.234,56.
func BRL(v float64) string {
	cents := int64(math.Floor(math.Abs(v)*100 + 0.5))
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	sign := ""
	if v < -0.004 {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, strings.Join(groups, "."), frac)
}

// CubicMeters renders a meter quantity with 2 decimals and unit suffix.
func CubicMeters(v float64) string {
	return fmt.Sprintf("%.2f m³", v)
}
