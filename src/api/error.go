package api

import (
	"errors"
	"net/http"

	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrRateLimited     = errors.New("too many requests")
	ErrIndexerDisabled = errors.New("indexer is disabled")
	ErrNotFound        = errors.New("not found")

	ErrMonitoringDisabled = errors.New("monitoring disabled")
)

type code struct {
	err    error
	status int
	name   string
}

// First match wins
var codes = []code{
	// Request
	{ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{runtime.ErrInvalidPubkey, http.StatusBadRequest, "invalid_address"},
	{ledger.ErrTooManyAccounts, http.StatusBadRequest, "too_many_accounts"},
	{ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ledger.ErrAccountNotFound, http.StatusNotFound, "not_found"},
	{ErrIndexerDisabled, http.StatusNotImplemented, "indexer_disabled"},
	{ledger.ErrBankStopped, http.StatusServiceUnavailable, "unavailable"},

	// Authorization
	{ledger.ErrSignatureMissing, http.StatusForbidden, "signature_missing"},
	{ledger.ErrInvalidSignature, http.StatusForbidden, "invalid_signature"},
	{program.ErrMissingSignature, http.StatusForbidden, "missing_signature"},
	{program.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{runtime.ErrMissingRequiredSignature, http.StatusForbidden, "missing_signature"},
	{runtime.ErrPrivilegeEscalation, http.StatusForbidden, "privilege_escalation"},

	// Project state
	{program.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{program.ErrAlreadyInitialized, http.StatusConflict, "already_initialized"},
	{program.ErrMilestoneNotComplete, http.StatusConflict, "milestone_not_complete"},
	{runtime.ErrAccountAlreadyInUse, http.StatusConflict, "account_in_use"},
	{ledger.ErrDuplicateTransaction, http.StatusConflict, "duplicate_transaction"},

	// Instruction couldn't be executed
	{program.ErrMalformedInstruction, http.StatusUnprocessableEntity, "malformed_instruction"},
	{program.ErrUnknownInstruction, http.StatusUnprocessableEntity, "unknown_instruction"},
	{program.ErrTooManyMilestones, http.StatusUnprocessableEntity, "too_many_milestones"},
	{program.ErrIndexOutOfRange, http.StatusUnprocessableEntity, "index_out_of_range"},
	{program.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "arithmetic_overflow"},
	{program.ErrNotEnoughAccountKeys, http.StatusUnprocessableEntity, "not_enough_account_keys"},
	{program.ErrInvalidAccountData, http.StatusUnprocessableEntity, "invalid_account_data"},
	{program.ErrIllegalOwner, http.StatusUnprocessableEntity, "illegal_owner"},
	{program.ErrInvalidSysvar, http.StatusUnprocessableEntity, "invalid_sysvar"},
	{program.ErrIncorrectProgramId, http.StatusUnprocessableEntity, "incorrect_program_id"},
	{program.ErrRecordMismatch, http.StatusUnprocessableEntity, "record_mismatch"},
	{runtime.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{runtime.ErrReadonlyAccount, http.StatusUnprocessableEntity, "readonly_account"},
	{runtime.ErrAccountDataTooSmall, http.StatusUnprocessableEntity, "account_data_too_small"},
	{runtime.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "arithmetic_overflow"},
	{ledger.ErrUnknownProgram, http.StatusUnprocessableEntity, "unknown_program"},
	{ledger.ErrProgramPanicked, http.StatusUnprocessableEntity, "program_failed"},
	{ledger.ErrUnbalanced, http.StatusUnprocessableEntity, "program_failed"},
	{ledger.ErrReadonlyModified, http.StatusUnprocessableEntity, "program_failed"},
	{ledger.ErrForeignDataChange, http.StatusUnprocessableEntity, "program_failed"},
	{ledger.ErrLamportsOverflow, http.StatusUnprocessableEntity, "program_failed"},
	{ledger.ErrExternalDebit, http.StatusUnprocessableEntity, "program_failed"},
}

// HTTP status and stable name for the error
func Code(err error) (status int, name string) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.status, c.name
		}
	}
	return http.StatusInternalServerError, "internal"
}
