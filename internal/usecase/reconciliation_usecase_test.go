package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/usecase"
	"github.com/iho/txengine/internal/usecase/mocks"
)

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	uc := usecase.NewReconciliationUseCase(nil)

	tests := []struct {
		name       string
		available  string
		held       string
		total      string
		reconciled bool
		difference string
	}{
		{"balanced", "10", "5", "15", true, "0"},
		{"empty", "0", "0", "0", true, "0"},
		{"total too high", "10", "5", "16", false, "1"},
		{"total too low", "10", "5.5", "15", false, "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := domain.NewAccount(1)
			acc.Available = amount(tt.available)
			acc.Held = amount(tt.held)
			acc.Total = amount(tt.total)

			result := uc.ReconcileAccount(acc)

			assert.Equal(t, tt.reconciled, result.IsReconciled)
			assert.True(t, result.Difference.Equal(amount(tt.difference)), "difference %s", result.Difference)
			assert.False(t, result.LastChecked.IsZero())
		})
	}
}

func TestReconciliationUseCase_GenerateReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lister := mocks.NewMockAccountLister(ctrl)
	uc := usecase.NewReconciliationUseCase(lister)

	good := domain.NewAccount(1)
	good.Available = amount("10")
	good.Held = amount("5")
	good.Total = amount("15")

	locked := domain.NewAccount(2)
	locked.Available = amount("3")
	locked.Total = amount("3")
	locked.Locked = true

	broken := domain.NewAccount(3)
	broken.Available = amount("1")
	broken.Total = amount("2")

	lister.EXPECT().ListAccounts(gomock.Any()).Return([]domain.Account{good, locked, broken}, nil)

	report, err := uc.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalAccounts)
	assert.Equal(t, 2, report.ReconciledAccounts)
	assert.Equal(t, 1, report.LockedAccounts)
	assert.Equal(t, "14.0000", domain.FormatMoney(report.TotalAvailable))
	assert.Equal(t, "5.0000", domain.FormatMoney(report.TotalHeld))
	assert.Equal(t, "20.0000", domain.FormatMoney(report.Total))
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, domain.ClientID(3), report.Discrepancies[0].ClientID)
	assert.False(t, report.Consistent())
}

func TestReconciliationUseCase_LedgerIsAlwaysConsistent(t *testing.T) {
	ledger := newLedger()
	require.NoError(t, ledger.Apply(domain.NewDeposit(1, 1, amount("100"))))
	require.NoError(t, ledger.Apply(domain.NewDeposit(2, 2, amount("50"))))
	require.NoError(t, ledger.Apply(domain.NewDispute(1, 1)))
	require.NoError(t, ledger.Apply(domain.NewChargeback(1, 1)))

	uc := usecase.NewReconciliationUseCase(ledger)

	report, err := uc.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 1, report.LockedAccounts)

	results, err := uc.ReconcileAllAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestReconciliationUseCase_ListerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lister := mocks.NewMockAccountLister(ctrl)
	uc := usecase.NewReconciliationUseCase(lister)

	lister.EXPECT().ListAccounts(gomock.Any()).Return(nil, errors.New("boom")).Times(2)

	_, err := uc.GenerateReconciliationReport(context.Background())
	assert.Error(t, err)

	_, err = uc.ReconcileAllAccounts(context.Background())
	assert.Error(t, err)
}
