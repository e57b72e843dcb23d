package usecase

import (
	"context"
	"fmt"

	"github.com/iho/txengine/internal/domain"
)

// AccountUseCase handles read access to accounts.
type AccountUseCase struct {
	lister AccountLister
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(lister AccountLister) *AccountUseCase {
	return &AccountUseCase{lister: lister}
}

// GetAccount retrieves one client's account.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error) {
	accounts, err := uc.lister.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if accounts[i].ClientID == id {
			return &accounts[i], nil
		}
	}

	return nil, fmt.Errorf("%w: client %d", domain.ErrAccountNotFound, id)
}

// ListAccounts lists every account.
func (uc *AccountUseCase) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return uc.lister.ListAccounts(ctx)
}
