package ledger

import (
	"github.com/colabio/crowdfund/src/runtime"
)

type AccountState struct {
	Key runtime.Pubkey `json:"key"`
	Account
}

// Outcome of an executed transaction
type Receipt struct {
	Id        string                `json:"id"`
	Slot      uint64                `json:"slot"`
	Timestamp int64                 `json:"timestamp"`
	ProgramId runtime.Pubkey        `json:"program_id"`
	Accounts  []runtime.AccountMeta `json:"accounts"`
	Data      []byte                `json:"data"`

	// Writable accounts after execution, empty for failed transactions
	PostAccounts []AccountState `json:"post_accounts,omitempty"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func (self *Receipt) Failed() bool {
	return self.Err != nil
}

func (self *Receipt) PostState(key runtime.Pubkey) (out *AccountState, ok bool) {
	for i := range self.PostAccounts {
		if self.PostAccounts[i].Key == key {
			return &self.PostAccounts[i], true
		}
	}
	return
}

// Key of the i-th account passed to the program
func (self *Receipt) AccountKey(i int) (key runtime.Pubkey, ok bool) {
	if i < 0 || i >= len(self.Accounts) {
		return
	}
	return self.Accounts[i].Pubkey, true
}
