package report

import (
	"go.uber.org/atomic"
)

type BankErrors struct {
	SignatureVerification atomic.Uint64 `json:"signature_verification"`
	Conflicts             atomic.Uint64 `json:"conflicts"`
	Storage               atomic.Uint64 `json:"storage"`
	DuplicateTransactions atomic.Uint64 `json:"duplicate_transactions"`
}

type BankState struct {
	CurrentSlot                  atomic.Uint64  `json:"current_slot"`
	TransactionsExecuted         atomic.Uint64  `json:"transactions_executed"`
	TransactionsFailed           atomic.Uint64  `json:"transactions_failed"`
	AverageTransactionsPerMinute atomic.Float64 `json:"average_transactions_per_minute"`

	// Successful instructions, by type
	InitializeProject atomic.Uint64 `json:"initialize_project"`
	Contribute        atomic.Uint64 `json:"contribute"`
	ValidateMilestone atomic.Uint64 `json:"validate_milestone"`
	ReleaseFunds      atomic.Uint64 `json:"release_funds"`
	CancelProject     atomic.Uint64 `json:"cancel_project"`
	Vote              atomic.Uint64 `json:"vote"`
}

type BankReport struct {
	State  BankState  `json:"state"`
	Errors BankErrors `json:"errors"`
}
