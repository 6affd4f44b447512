package utils

import "math"

// RoundToCents keeps monetary values aligned with the decimal(10,2) columns.
func RoundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToMinorUnits converts a price to minor currency units (cents) for the
// checkout provider, which rejects fractional amounts.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// RoundPercentage rounds a percentage to 2 decimals for analytics summaries.
func RoundPercentage(value float64) float64 {
	return math.Round(value*100) / 100
}
