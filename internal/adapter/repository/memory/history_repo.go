package memory

import (
	"fmt"

	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/usecase"
)

// TransactionHistory is an append-only map of applied transactions.
// It is not safe for concurrent use.
type TransactionHistory struct {
	transactions map[domain.TxID]domain.Transaction
}

// NewTransactionHistory creates a new TransactionHistory.
func NewTransactionHistory() *TransactionHistory {
	return &TransactionHistory{
		transactions: make(map[domain.TxID]domain.Transaction),
	}
}

func (h *TransactionHistory) Get(id domain.TxID) (domain.Transaction, bool) {
	tx, ok := h.transactions[id]
	return tx, ok
}

func (h *TransactionHistory) Insert(tx domain.Transaction) error {
	if _, exists := h.transactions[tx.TxID]; exists {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateTransaction, tx.TxID)
	}

	h.transactions[tx.TxID] = tx
	return nil
}

func (h *TransactionHistory) Len() int {
	return len(h.transactions)
}

var _ usecase.TransactionHistory = (*TransactionHistory)(nil)
