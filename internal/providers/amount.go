package providers

import "github.com/shopspring/decimal"

// Providers that report decimal amount strings are normalized to minor units
// here. All supported settlement currencies use two decimal places.

// MinorUnits converts a decimal major-unit amount to minor units.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// MajorUnits converts minor units back to a decimal major-unit amount.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-2)
}

// ParseAmount parses a provider-reported amount string into minor units.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return MinorUnits(d), nil
}
