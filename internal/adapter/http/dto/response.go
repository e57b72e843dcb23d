package dto

import (
	"time"

	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/usecase"
)

// AccountResponse represents an account in API responses. Balances use the
// same fixed four-digit form as the CSV report.
type AccountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Client:    uint16(a.ClientID),
		Available: domain.FormatMoney(a.Available),
		Held:      domain.FormatMoney(a.Held),
		Total:     domain.FormatMoney(a.Total),
		Locked:    a.Locked,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i := range accounts {
		result[i] = AccountFromDomain(&accounts[i])
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int                `json:"total"`
}

// SubmitResponse reports what happened to a submitted batch. Accepted
// transactions are queued; their outcome is only visible in the accounts.
type SubmitResponse struct {
	BatchID  string `json:"batch_id"`
	Read     int    `json:"read"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
}

// DiscrepancyResponse describes one account whose total is off.
type DiscrepancyResponse struct {
	Client          uint16 `json:"client"`
	Available       string `json:"available"`
	Held            string `json:"held"`
	RecordedTotal   string `json:"recorded_total"`
	CalculatedTotal string `json:"calculated_total"`
	Difference      string `json:"difference"`
}

// ReconciliationResponse represents a consistency check.
type ReconciliationResponse struct {
	Status             string                 `json:"status"`
	Consistent         bool                   `json:"consistent"`
	TotalAccounts      int                    `json:"total_accounts"`
	ReconciledAccounts int                    `json:"reconciled_accounts"`
	LockedAccounts     int                    `json:"locked_accounts"`
	TotalAvailable     string                 `json:"total_available"`
	TotalHeld          string                 `json:"total_held"`
	Total              string                 `json:"total"`
	Discrepancies      []*DiscrepancyResponse `json:"discrepancies"`
	CheckedAt          time.Time              `json:"checked_at"`
}

// ReconciliationFromReport converts a reconciliation report to response.
func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	status := "consistent"
	if !r.Consistent() {
		status = "inconsistent"
	}

	discrepancies := make([]*DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = &DiscrepancyResponse{
			Client:          uint16(d.ClientID),
			Available:       domain.FormatMoney(d.Available),
			Held:            domain.FormatMoney(d.Held),
			RecordedTotal:   domain.FormatMoney(d.RecordedTotal),
			CalculatedTotal: domain.FormatMoney(d.CalculatedTotal),
			Difference:      domain.FormatMoney(d.Difference),
		}
	}

	return &ReconciliationResponse{
		Status:             status,
		Consistent:         r.Consistent(),
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		LockedAccounts:     r.LockedAccounts,
		TotalAvailable:     domain.FormatMoney(r.TotalAvailable),
		TotalHeld:          domain.FormatMoney(r.TotalHeld),
		Total:              domain.FormatMoney(r.Total),
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
