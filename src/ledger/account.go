package ledger

import (
	"bytes"

	"github.com/colabio/crowdfund/src/runtime"

	"github.com/near/borsh-go"
)

// Persisted account
type Account struct {
	Lamports uint64         `json:"lamports"`
	Owner    runtime.Pubkey `json:"owner"`
	Data     []byte         `json:"data"`
}

// Nothing to store, account doesn't exist
func (self *Account) IsEmpty() bool {
	return self.Lamports == 0 && len(self.Data) == 0 && self.Owner == runtime.SystemProgramId
}

func (self *Account) Marshal() ([]byte, error) {
	return borsh.Serialize(*self)
}

func (self *Account) Unmarshal(buf []byte) error {
	return borsh.Deserialize(self, buf)
}

func (self *Account) Info(key runtime.Pubkey, isSigner, isWritable bool) *runtime.AccountInfo {
	return &runtime.AccountInfo{
		Key:        key,
		IsSigner:   isSigner,
		IsWritable: isWritable,
		Owner:      self.Owner,
		Lamports:   self.Lamports,
		Data:       bytes.Clone(self.Data),
	}
}

func accountFromInfo(info *runtime.AccountInfo) *Account {
	return &Account{
		Lamports: info.Lamports,
		Owner:    info.Owner,
		Data:     bytes.Clone(info.Data),
	}
}
