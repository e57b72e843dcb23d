package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/infrastructure/metrics"
)

// LedgerUseCase applies transactions to accounts. It owns the account and
// history repositories and is the only code that mutates them; callers must
// not invoke it from more than one goroutine at a time.
type LedgerUseCase struct {
	accountRepo AccountRepository
	history     TransactionHistory
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. metrics may be nil.
func NewLedgerUseCase(accountRepo AccountRepository, history TransactionHistory, metrics *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		history:     history,
		metrics:     metrics,
	}
}

// Apply validates tx against the account and history and applies it.
// A failed transaction leaves all state unchanged.
func (uc *LedgerUseCase) Apply(tx domain.Transaction) error {
	start := time.Now()

	err := uc.apply(tx)

	if uc.metrics != nil {
		uc.metrics.ApplyDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			uc.metrics.TransactionsRejected.WithLabelValues(string(tx.Type), domain.ErrorCode(err)).Inc()
		} else {
			uc.metrics.TransactionsApplied.WithLabelValues(string(tx.Type)).Inc()
		}
	}

	return err
}

func (uc *LedgerUseCase) apply(tx domain.Transaction) error {
	account, created := uc.accountRepo.GetOrCreate(tx.ClientID)
	if created && uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	if !account.IsAvailable() {
		return fmt.Errorf("%w: client %d", domain.ErrAccountLocked, tx.ClientID)
	}

	switch tx.Type {
	case domain.TransactionTypeDeposit, domain.TransactionTypeWithdrawal:
		return uc.applyMovement(account, tx)
	case domain.TransactionTypeDispute, domain.TransactionTypeResolve, domain.TransactionTypeChargeback:
		return uc.applyDisputeAction(account, tx)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownTransactionType, string(tx.Type))
	}
}

// applyMovement handles deposits and withdrawals.
func (uc *LedgerUseCase) applyMovement(account domain.Account, tx domain.Transaction) error {
	if _, exists := uc.history.Get(tx.TxID); exists {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateTransaction, tx.TxID)
	}

	if err := tx.Validate(); err != nil {
		return err
	}

	amount := tx.Amount.Decimal
	err := uc.commit(account, func(acc *domain.Account) error {
		if tx.Type == domain.TransactionTypeDeposit {
			return acc.Deposit(amount)
		}
		return acc.Withdraw(amount)
	})
	if err != nil {
		return err
	}

	// Checked above; a failure here means the history changed underneath us.
	if err := uc.history.Insert(tx); err != nil {
		return err
	}

	return nil
}

// applyDisputeAction handles disputes, resolves and chargebacks, all of which
// act on a stored deposit.
func (uc *LedgerUseCase) applyDisputeAction(account domain.Account, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	referenced, ok := uc.history.Get(tx.TxID)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrNonExistentTransaction, tx.TxID)
	}

	if referenced.ClientID != tx.ClientID {
		return fmt.Errorf("%w: transaction %d belongs to client %d, got client %d",
			domain.ErrInvalidClient, tx.TxID, referenced.ClientID, tx.ClientID)
	}

	if referenced.Type == domain.TransactionTypeWithdrawal {
		return fmt.Errorf("%w: transaction %d", domain.ErrInvalidOperationOnWithdrawal, tx.TxID)
	}

	amount := referenced.Amount.Decimal

	err := uc.commit(account, func(acc *domain.Account) error {
		switch tx.Type {
		case domain.TransactionTypeDispute:
			acc.HoldFunds(amount)
		case domain.TransactionTypeResolve:
			acc.ReleaseFunds(amount)
		case domain.TransactionTypeChargeback:
			acc.Chargeback(amount)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if tx.Type == domain.TransactionTypeChargeback && uc.metrics != nil {
		uc.metrics.AccountsLocked.Inc()
	}

	return nil
}

// commit runs rule against a copy of account and saves the copy only if the
// rule succeeds and the balance invariant still holds.
func (uc *LedgerUseCase) commit(account domain.Account, rule func(*domain.Account) error) error {
	next := account
	if err := rule(&next); err != nil {
		return err
	}

	if !next.IsValid() {
		return fmt.Errorf("%w: balance invariant violated for client %d", domain.ErrInvalidTransaction, next.ClientID)
	}

	uc.accountRepo.Save(next)
	return nil
}

// ListAccounts returns every account ordered by client id.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return uc.accountRepo.List(), nil
}

// TransactionCount returns the number of deposits and withdrawals applied.
func (uc *LedgerUseCase) TransactionCount() int {
	return uc.history.Len()
}
