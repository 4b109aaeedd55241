package runtime

import (
	"math/bits"
	"time"
)

// Executed program's view of the host: time, rent and the system primitives
// for creating accounts and moving lamports. Valid for a single instruction.
type Invocation struct {
	ProgramId Pubkey

	clock Clock
	rent  Rent
}

// Program executed by the host
type Program interface {
	Process(inv *Invocation, accounts []*AccountInfo, data []byte) error
}

func NewInvocation(programId Pubkey, clock Clock, rent Rent) (self *Invocation) {
	self = new(Invocation)
	self.ProgramId = programId
	self.clock = clock
	self.rent = rent
	return
}

func (self *Invocation) Now() time.Time {
	return self.clock.Now()
}

func (self *Invocation) Rent() Rent {
	return self.rent
}

// Allocates space for an account, funds it from the payer and assigns it to the owner.
// Both payer and the new account have to sign.
func (self *Invocation) CreateAccount(payer, account *AccountInfo, lamports, space uint64, owner Pubkey) (err error) {
	if !payer.IsSigner || !account.IsSigner {
		return ErrMissingRequiredSignature
	}
	if !payer.IsWritable || !account.IsWritable {
		return ErrReadonlyAccount
	}
	if account.Owner != SystemProgramId || len(account.Data) > 0 || account.Lamports > 0 {
		return ErrAccountAlreadyInUse
	}
	if payer.Lamports < lamports {
		return ErrInsufficientFunds
	}

	payer.Lamports -= lamports
	account.Lamports = lamports
	account.Data = make([]byte, space)
	account.Owner = owner
	return
}

// Moves lamports out of a system owned account that signed the transaction
func (self *Invocation) Transfer(from, to *AccountInfo, amount uint64) (err error) {
	if !from.IsSigner {
		return ErrMissingRequiredSignature
	}
	if from.Owner != SystemProgramId {
		return ErrIllegalOwner
	}
	return move(from, to, amount, 0)
}

// Moves lamports out of an account owned by the executing program. Seeds have to derive
// the account's escrow authority, the keyless signer standing in for the program.
// The account keeps its rent exempt minimum.
func (self *Invocation) TransferSigned(from, to *AccountInfo, amount uint64, seeds [][]byte) (err error) {
	signer, err := CreateProgramAddress(seeds, self.ProgramId)
	if err != nil {
		return ErrInvalidSeeds
	}
	if from.Owner != self.ProgramId {
		return ErrIllegalOwner
	}

	authority, err := EscrowAuthority(self.ProgramId, from.Key)
	if err != nil {
		return
	}
	if signer != authority {
		return ErrPrivilegeEscalation
	}

	return move(from, to, amount, self.rent.MinimumBalance(uint64(len(from.Data))))
}

func move(from, to *AccountInfo, amount, keep uint64) (err error) {
	if !from.IsWritable || !to.IsWritable {
		return ErrReadonlyAccount
	}
	if from.Lamports < amount || from.Lamports-amount < keep {
		return ErrInsufficientFunds
	}
	if from.Key == to.Key {
		return
	}

	sum, carry := bits.Add64(to.Lamports, amount, 0)
	if carry != 0 {
		return ErrArithmeticOverflow
	}
	from.Lamports -= amount
	to.Lamports = sum
	return
}
