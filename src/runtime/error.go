package runtime

import "errors"

var (
	ErrInvalidPubkey            = errors.New("invalid base58 public key")
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrReadonlyAccount          = errors.New("account is not writable")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrAccountDataTooSmall      = errors.New("account data too small")
	ErrIllegalOwner             = errors.New("account owned by a different program")
	ErrInvalidSeeds             = errors.New("seeds do not produce a valid program address")
	ErrMaxSeedLengthExceeded    = errors.New("seed longer than 32 bytes or too many seeds")
	ErrPrivilegeEscalation      = errors.New("signer seeds do not authorize the debited account")
	ErrArithmeticOverflow       = errors.New("lamports overflow")
)
