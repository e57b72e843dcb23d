package usecase

import (
	"context"

	"github.com/iho/txengine/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// GetOrCreate returns the account for id, storing a new empty account
	// first if none exists. The bool reports whether it was created.
	GetOrCreate(id domain.ClientID) (domain.Account, bool)
	Save(account domain.Account)
	// List returns every account ordered by client id.
	List() []domain.Account
}

// TransactionHistory stores applied deposits and withdrawals by id.
// Entries are never replaced or removed.
type TransactionHistory interface {
	Get(id domain.TxID) (domain.Transaction, bool)
	// Insert fails with domain.ErrDuplicateTransaction if id is taken.
	Insert(tx domain.Transaction) error
	Len() int
}

// AccountLister returns a point-in-time copy of every account.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}
