package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/txengine/internal/adapter/csvio"
	"github.com/iho/txengine/internal/adapter/http/dto"
	"github.com/iho/txengine/internal/domain"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	GetAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	logger    zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, logger: logger}
}

// Get retrieves one client's account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "client")
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id", err.Error())
		return
	}
	annotate(r, map[string]any{"client": id})

	account, err := h.accountUC.GetAccount(r.Context(), domain.ClientID(id))
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List writes a snapshot of every account, as CSV unless ?format=json.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListAccounts(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
			Accounts: dto.AccountsFromDomain(accounts),
			Total:    len(accounts),
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if err := csvio.WriteAccounts(w, accounts); err != nil {
		h.logger.Error().Err(err).Msg("failed to write account report")
	}
}
