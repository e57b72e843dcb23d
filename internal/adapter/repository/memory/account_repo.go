package memory

import (
	"slices"

	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/usecase"
)

// AccountRepository keeps accounts in a map keyed by client id.
// It is not safe for concurrent use.
type AccountRepository struct {
	accounts map[domain.ClientID]*domain.Account
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[domain.ClientID]*domain.Account),
	}
}

// GetOrCreate returns a copy of the account for id, creating it if needed.
func (r *AccountRepository) GetOrCreate(id domain.ClientID) (domain.Account, bool) {
	if acc, ok := r.accounts[id]; ok {
		return *acc, false
	}

	acc := domain.NewAccount(id)
	r.accounts[id] = &acc
	return acc, true
}

// Save stores a copy of account.
func (r *AccountRepository) Save(account domain.Account) {
	r.accounts[account.ClientID] = &account
}

// List returns copies of all accounts ordered by client id.
func (r *AccountRepository) List() []domain.Account {
	result := make([]domain.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		result = append(result, *acc)
	}

	slices.SortFunc(result, func(a, b domain.Account) int {
		return int(a.ClientID) - int(b.ClientID)
	})

	return result
}

var _ usecase.AccountRepository = (*AccountRepository)(nil)
