package currency

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
)

var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

func ParseCurrency(s string) (Currency, error) {
	switch s {
	case CurrencyCAD.String():
		return CurrencyCAD, nil
	case CurrencyUSD.String():
		return CurrencyUSD, nil
	default:
		return "", ErrInvalidCurrency
	}
}

// MinorToMajor formats an amount of minor units (cents) as a major-unit
// decimal string with exactly two fraction digits, e.g. 9999 -> "99.99".
// The marketplace API expects prices in this form.
func MinorToMajor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// MajorToMinor parses a major-unit decimal amount and returns the amount in
// minor units. Exact halves round away from zero, so "0.005" becomes 1.
func MajorToMinor(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", amount, err)
	}

	return d.Shift(2).Round(0).IntPart(), nil
}
