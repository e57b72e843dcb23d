package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/txengine/internal/domain"
)

// TransactionRequest represents a single transaction submitted as JSON.
// Amount is omitted for dispute, resolve and chargeback.
type TransactionRequest struct {
	Type   string              `json:"type"`
	Client uint16              `json:"client"`
	Tx     uint32              `json:"tx"`
	Amount decimal.NullDecimal `json:"amount"`
}

// ToDomain converts the request into a validated transaction. Amounts are
// bounds-checked and rounded to four fractional digits first.
func (r *TransactionRequest) ToDomain() (domain.Transaction, error) {
	txType, err := domain.ParseTransactionType(r.Type)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		Type:     txType,
		ClientID: domain.ClientID(r.Client),
		TxID:     domain.TxID(r.Tx),
	}
	if r.Amount.Valid {
		amount, err := domain.NormalizeMoney(r.Amount.Decimal)
		if err != nil {
			return domain.Transaction{}, err
		}
		tx.Amount = decimal.NewNullDecimal(amount)
	}

	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	return tx, nil
}
