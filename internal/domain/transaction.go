package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TxID identifies a deposit or withdrawal. Dispute-family transactions carry
// the id of the transaction they refer to.
type TxID uint32

// TransactionType is the kind of ledger event.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDispute    TransactionType = "dispute"
	TransactionTypeResolve    TransactionType = "resolve"
	TransactionTypeChargeback TransactionType = "chargeback"
)

// TransactionTypes lists every supported type.
var TransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypeDispute,
	TransactionTypeResolve,
	TransactionTypeChargeback,
}

// ParseTransactionType parses s case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TransactionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
}

// IsDisputeFamily reports whether t refers to an earlier transaction.
func (t TransactionType) IsDisputeFamily() bool {
	switch t {
	case TransactionTypeDispute, TransactionTypeResolve, TransactionTypeChargeback:
		return true
	default:
		return false
	}
}

// Transaction is one immutable ledger event.
type Transaction struct {
	Type     TransactionType
	ClientID ClientID
	TxID     TxID
	Amount   decimal.NullDecimal
}

func NewDeposit(client ClientID, id TxID, amount decimal.Decimal) Transaction {
	return Transaction{
		Type:     TransactionTypeDeposit,
		ClientID: client,
		TxID:     id,
		Amount:   decimal.NewNullDecimal(amount),
	}
}

func NewWithdrawal(client ClientID, id TxID, amount decimal.Decimal) Transaction {
	return Transaction{
		Type:     TransactionTypeWithdrawal,
		ClientID: client,
		TxID:     id,
		Amount:   decimal.NewNullDecimal(amount),
	}
}

func NewDispute(client ClientID, id TxID) Transaction {
	return Transaction{Type: TransactionTypeDispute, ClientID: client, TxID: id}
}

func NewResolve(client ClientID, id TxID) Transaction {
	return Transaction{Type: TransactionTypeResolve, ClientID: client, TxID: id}
}

func NewChargeback(client ClientID, id TxID) Transaction {
	return Transaction{Type: TransactionTypeChargeback, ClientID: client, TxID: id}
}

// IsDisputeFamily reports whether the transaction refers to an earlier one.
func (t Transaction) IsDisputeFamily() bool {
	return t.Type.IsDisputeFamily()
}

// Validate checks that the amount matches the transaction type.
func (t Transaction) Validate() error {
	switch t.Type {
	case TransactionTypeDeposit, TransactionTypeWithdrawal:
		if err := ValidateAmount(t.Amount); err != nil {
			return fmt.Errorf("%s %d: %w", t.Type, t.TxID, err)
		}
		return nil
	case TransactionTypeDispute, TransactionTypeResolve, TransactionTypeChargeback:
		if t.Amount.Valid {
			return fmt.Errorf("%w: %s %d must not carry an amount", ErrInvalidTransaction, t.Type, t.TxID)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransactionType, string(t.Type))
	}
}
