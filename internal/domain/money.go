package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by balances and amounts.
const MoneyScale int32 = 4

// maxMoneyExponent bounds the decimal exponent of an input amount in both
// directions. Rescaling beyond it costs time proportional to the exponent.
const maxMoneyExponent int32 = 28

// MaxMoney is the largest magnitude an amount may have (2^96 - 1).
var MaxMoney = decimal.RequireFromString("79228162514264337593543950335")

// ParseMoney parses raw as an amount, checks it against the money bounds
// and rounds it to MoneyScale.
func ParseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount: %v", ErrInvalidTransaction, err)
	}
	return NormalizeMoney(d)
}

// NormalizeMoney rejects amounts outside the money bounds and rounds the
// rest to MoneyScale. The bounds are checked before any rescaling.
func NormalizeMoney(d decimal.Decimal) (decimal.Decimal, error) {
	if exp := d.Exponent(); exp > maxMoneyExponent || exp < -maxMoneyExponent {
		return decimal.Zero, fmt.Errorf("%w: amount exponent %d out of range", ErrInvalidTransaction, exp)
	}
	if d.Abs().GreaterThan(MaxMoney) {
		return decimal.Zero, fmt.Errorf("%w: amount exceeds %s", ErrInvalidTransaction, MaxMoney.String())
	}
	return RoundMoney(d), nil
}

// RoundMoney rounds d to MoneyScale fractional digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FormatMoney renders d with exactly MoneyScale fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}

func minMoney(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
