package ledger

import "errors"

var (
	ErrUnknownProgram    = errors.New("program not deployed")
	ErrTooManyAccounts   = errors.New("too many accounts in transaction")
	ErrSignatureMissing  = errors.New("declared signer did not sign the transaction")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnexpectedSigner  = errors.New("key is not a signer of this transaction")
	ErrAccountNotFound   = errors.New("account not found")
	ErrBankStopped       = errors.New("bank is stopping")
	ErrProgramPanicked   = errors.New("program panicked")
	ErrUnbalanced        = errors.New("transaction created or destroyed lamports")
	ErrReadonlyModified  = errors.New("program modified a readonly account")
	ErrForeignDataChange = errors.New("program modified data of an account it doesn't own")
	ErrLamportsOverflow  = errors.New("lamports overflow")
	ErrExternalDebit     = errors.New("program debited an account it doesn't own")

	ErrDuplicateTransaction = errors.New("transaction already processed")
)
