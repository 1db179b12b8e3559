// Package minor converts between decimal currency amounts and integer
// minor-unit (cent) values. Conversion happens once at ingestion; every
// computation downstream of this package is pure integer arithmetic.
package minor

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal digits in a minor unit.
const Scale = 2

var (
	ErrNegative   = errors.New("amount must not be negative")
	ErrNotNumeric = errors.New("amount is not a valid decimal number")
	ErrTooLarge   = errors.New("amount exceeds representable range")
)

// ToUnits converts a decimal amount to integer minor units, rounding the
// scaled value half away from zero. This is the single point where sub-cent
// precision is discarded.
func ToUnits(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrNegative
	}
	u := d.Shift(Scale).Round(0)
	if !u.BigInt().IsInt64() {
		return 0, ErrTooLarge
	}
	return u.IntPart(), nil
}

// FromUnits converts integer minor units back to a decimal amount. The
// division by 10^Scale is exact.
func FromUnits(units int64) decimal.Decimal {
	return decimal.New(units, -Scale)
}

// Parse converts a decimal string to minor units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotNumeric
	}
	return ToUnits(d)
}

// Valid reports whether d is an acceptable magnitude: non-negative and within
// the representable minor-unit range.
func Valid(d decimal.Decimal) bool {
	_, err := ToUnits(d)
	return err == nil
}
