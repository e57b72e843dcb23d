package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateAmount validates a deposit or withdrawal amount.
func ValidateAmount(amount decimal.NullDecimal) error {
	if !amount.Valid {
		return fmt.Errorf("%w: missing amount", ErrInvalidTransaction)
	}

	if amount.Decimal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidTransaction, amount.Decimal.String())
	}

	return nil
}
