package dto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a decimal amount string into smallest units at the
// given scale. "1.5" at scale 8 becomes 150000000. The amount must be
// positive, fit in int64 and carry no precision beyond the scale.
func ParsePrice(s string, decimals int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be positive, got %q", s)
	}

	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q exceeds %d decimal places", s, decimals)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}

	return shifted.IntPart(), nil
}

// FormatPrice renders smallest units back into a decimal string at the
// given scale.
func FormatPrice(units int64, decimals int32) string {
	return decimal.New(units, -decimals).String()
}
