package memory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/txengine/internal/domain"
)

func TestAccountRepository_GetOrCreate(t *testing.T) {
	repo := NewAccountRepository()

	acc, created := repo.GetOrCreate(5)
	if !created {
		t.Fatal("expected account to be created on first access")
	}
	if acc.ClientID != 5 || !acc.Total.IsZero() || acc.Locked {
		t.Fatalf("unexpected new account: %+v", acc)
	}

	_, created = repo.GetOrCreate(5)
	if created {
		t.Fatal("expected existing account on second access")
	}
}

func TestAccountRepository_SaveDoesNotAlias(t *testing.T) {
	repo := NewAccountRepository()

	acc, _ := repo.GetOrCreate(1)
	acc.Available = decimal.NewFromInt(10)
	acc.Total = decimal.NewFromInt(10)

	stored, _ := repo.GetOrCreate(1)
	if !stored.Total.IsZero() {
		t.Fatalf("expected unsaved change to be invisible, got %s", stored.Total)
	}

	repo.Save(acc)
	acc.Total = decimal.NewFromInt(99)

	stored, _ = repo.GetOrCreate(1)
	if !stored.Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected saved total 10, got %s", stored.Total)
	}
}

func TestAccountRepository_ListOrdered(t *testing.T) {
	repo := NewAccountRepository()
	for _, id := range []domain.ClientID{65535, 3, 1, 200} {
		repo.GetOrCreate(id)
	}

	list := repo.List()
	want := []domain.ClientID{1, 3, 200, 65535}
	if len(list) != len(want) {
		t.Fatalf("expected %d accounts, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ClientID != id {
			t.Fatalf("position %d: want client %d, got %d", i, id, list[i].ClientID)
		}
	}
}

func TestTransactionHistory_Insert(t *testing.T) {
	h := NewTransactionHistory()

	first := domain.NewDeposit(1, 10, decimal.NewFromInt(5))
	if err := h.Insert(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := h.Insert(domain.NewWithdrawal(2, 10, decimal.NewFromInt(1)))
	if !errors.Is(err, domain.ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got %v", err)
	}

	got, ok := h.Get(10)
	if !ok || got.ClientID != 1 || got.Type != domain.TransactionTypeDeposit {
		t.Fatalf("expected original transaction to be kept, got %+v", got)
	}

	if h.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", h.Len())
	}

	if _, ok := h.Get(11); ok {
		t.Fatal("expected missing id to be absent")
	}
}
