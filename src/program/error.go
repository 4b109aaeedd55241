package program

import "errors"

var (
	// Decoding
	ErrMalformedInstruction = errors.New("malformed instruction")
	ErrUnknownInstruction   = errors.New("unknown instruction")
	ErrTooManyMilestones    = errors.New("more than 255 milestones")

	// Authorization
	ErrMissingSignature = errors.New("missing required signature")
	ErrNotOwner         = errors.New("signer is not the project creator")

	// State machine
	ErrInvalidState         = errors.New("operation not allowed in the current project state")
	ErrIndexOutOfRange      = errors.New("milestone index out of range")
	ErrMilestoneNotComplete = errors.New("milestone not completed")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")

	// Accounts
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")
	ErrInvalidAccountData   = errors.New("invalid account data")
	ErrIllegalOwner         = errors.New("project account is not owned by the program")
	ErrAlreadyInitialized   = errors.New("project account already initialized")
	ErrInvalidSysvar        = errors.New("expected the rent sysvar")
)

var (
	ErrIncorrectProgramId = errors.New("expected the system program")
	ErrRecordMismatch     = errors.New("record account is not a side record of this program")
)
