package domain

import "errors"

var (
	// Account errors
	ErrAccountLocked     = errors.New("account locked")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transaction errors
	ErrDuplicateTransaction         = errors.New("transaction already exists")
	ErrNonExistentTransaction       = errors.New("transaction not found")
	ErrInvalidClient                = errors.New("transaction belongs to another client")
	ErrInvalidOperationOnWithdrawal = errors.New("withdrawals cannot be disputed")
	ErrInvalidTransaction           = errors.New("invalid transaction")
	ErrUnknownTransactionType       = errors.New("unknown transaction type")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrAccountLocked, "account_locked"},
	{ErrAccountNotFound, "account_not_found"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrDuplicateTransaction, "duplicate_transaction"},
	{ErrNonExistentTransaction, "non_existent_transaction"},
	{ErrInvalidClient, "invalid_client"},
	{ErrInvalidOperationOnWithdrawal, "invalid_operation_on_withdrawal"},
	{ErrInvalidTransaction, "invalid_transaction"},
	{ErrUnknownTransactionType, "unknown_transaction_type"},
}

// ErrorCode returns a stable snake_case code for err, or "internal" when err
// is not one of the ledger errors.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
