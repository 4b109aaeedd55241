package runtime

// View of an account passed to a program for the duration of one instruction.
// Programs mutate Lamports, Data and Owner only through an Invocation or by writing into Data.
type AccountInfo struct {
	Key        Pubkey
	IsSigner   bool
	IsWritable bool
	Owner      Pubkey
	Lamports   uint64
	Data       []byte
}

func (self *AccountInfo) IsOwnedBy(programId Pubkey) bool {
	return self.Owner == programId
}

// Role of an account in an instruction. Order of metas is part of the instruction's wire format.
type AccountMeta struct {
	Pubkey     Pubkey `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

func NewAccountMeta(key Pubkey, isSigner, isWritable bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: isSigner, IsWritable: isWritable}
}
