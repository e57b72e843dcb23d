package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txengine/internal/domain"
)

// ReconciliationUseCase checks that every account's total equals its
// available plus held balance.
type ReconciliationUseCase struct {
	lister AccountLister
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(lister AccountLister) *ReconciliationUseCase {
	return &ReconciliationUseCase{lister: lister}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	ClientID        domain.ClientID
	Available       decimal.Decimal
	Held            decimal.Decimal
	RecordedTotal   decimal.Decimal
	CalculatedTotal decimal.Decimal
	Difference      decimal.Decimal
	IsReconciled    bool
	LastChecked     time.Time
}

// ReconcileAccount compares the recorded total of one account with the sum
// of its available and held balances.
func (uc *ReconciliationUseCase) ReconcileAccount(account domain.Account) *ReconciliationResult {
	calculated := account.Available.Add(account.Held)
	difference := account.Total.Sub(calculated)

	return &ReconciliationResult{
		ClientID:        account.ClientID,
		Available:       account.Available,
		Held:            account.Held,
		RecordedTotal:   account.Total,
		CalculatedTotal: calculated,
		Difference:      difference,
		IsReconciled:    difference.IsZero(),
		LastChecked:     time.Now().UTC(),
	}
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	accounts, err := uc.lister.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		results = append(results, uc.ReconcileAccount(account))
	}

	return results, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	LockedAccounts     int
	TotalAvailable     decimal.Decimal
	TotalHeld          decimal.Decimal
	Total              decimal.Decimal
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// Consistent reports whether no account has a discrepancy.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	accounts, err := uc.lister.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	report := &ReconciliationReport{
		TotalAccounts:  len(accounts),
		TotalAvailable: decimal.Zero,
		TotalHeld:      decimal.Zero,
		Total:          decimal.Zero,
		Discrepancies:  make([]*ReconciliationResult, 0),
		CheckedAt:      time.Now().UTC(),
	}

	for _, account := range accounts {
		report.TotalAvailable = report.TotalAvailable.Add(account.Available)
		report.TotalHeld = report.TotalHeld.Add(account.Held)
		report.Total = report.Total.Add(account.Total)
		if account.Locked {
			report.LockedAccounts++
		}

		result := uc.ReconcileAccount(account)
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
