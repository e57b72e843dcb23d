package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientID identifies the owner of an account.
type ClientID uint16

// Account is one client's balance record.
type Account struct {
	ClientID  ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount returns an empty, unlocked account.
func NewAccount(id ClientID) Account {
	return Account{
		ClientID:  id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// IsValid reports whether total equals available plus held.
func (a *Account) IsValid() bool {
	return a.Total.Equal(a.Available.Add(a.Held))
}

// IsAvailable reports whether the account still accepts transactions.
func (a *Account) IsAvailable() bool {
	return !a.Locked
}

// Deposit credits amount to the available and total balances.
func (a *Account) Deposit(amount decimal.Decimal) error {
	newTotal := a.Total.Add(amount)
	if newTotal.IsNegative() {
		return fmt.Errorf("%w: total balance negative", ErrInvalidTransaction)
	}

	a.Available = a.Available.Add(amount)
	a.Total = newTotal
	return nil
}

// Withdraw debits amount from the available and total balances.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if a.Available.LessThan(amount) {
		return fmt.Errorf("%w: available %s, requested %s",
			ErrInsufficientFunds, FormatMoney(a.Available), FormatMoney(amount))
	}

	a.Available = a.Available.Sub(amount)
	a.Total = a.Total.Sub(amount)
	return nil
}

// HoldFunds moves up to amount from available to held and returns the
// amount actually moved. The move is capped at the available balance.
func (a *Account) HoldFunds(amount decimal.Decimal) decimal.Decimal {
	held := minMoney(amount, a.Available)

	a.Held = a.Held.Add(held)
	a.Available = a.Available.Sub(held)
	return held
}

// ReleaseFunds moves up to amount from held back to available.
func (a *Account) ReleaseFunds(amount decimal.Decimal) decimal.Decimal {
	released := minMoney(amount, a.Held)

	a.Held = a.Held.Sub(released)
	a.Available = a.Available.Add(released)
	return released
}

// Chargeback removes up to amount of held funds from the account and locks it.
func (a *Account) Chargeback(amount decimal.Decimal) decimal.Decimal {
	reversed := minMoney(amount, a.Held)

	a.Held = a.Held.Sub(reversed)
	a.Total = a.Total.Sub(reversed)
	a.Locked = true
	return reversed
}
