package ledger

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/colabio/crowdfund/src/runtime"
)

const MAX_ACCOUNTS = 64

type Signature struct {
	Pubkey    runtime.Pubkey `json:"pubkey"`
	Signature []byte         `json:"signature"`
}

// Single instruction transaction. Accounts keep the order expected by the program.
type Transaction struct {
	ProgramId  runtime.Pubkey        `json:"program_id"`
	Accounts   []runtime.AccountMeta `json:"accounts"`
	Data       []byte                `json:"data"`
	Nonce      uint64                `json:"nonce"`
	Signatures []Signature           `json:"signatures,omitempty"`
}

func NewTransaction(programId runtime.Pubkey, accounts []runtime.AccountMeta, data []byte) *Transaction {
	return &Transaction{
		ProgramId: programId,
		Accounts:  accounts,
		Data:      data,
	}
}

func (self *Transaction) WithNonce(nonce uint64) *Transaction {
	self.Nonce = nonce
	return self
}

// Bytes covered by signatures
func (self *Transaction) Message() (out []byte, err error) {
	if len(self.Accounts) > MAX_ACCOUNTS {
		err = ErrTooManyAccounts
		return
	}

	out = make([]byte, 0, 32+8+1+len(self.Accounts)*33+4+len(self.Data))
	out = append(out, self.ProgramId[:]...)
	out = binary.LittleEndian.AppendUint64(out, self.Nonce)
	out = append(out, uint8(len(self.Accounts)))
	for _, meta := range self.Accounts {
		var flags byte
		if meta.IsSigner {
			flags |= 1
		}
		if meta.IsWritable {
			flags |= 2
		}
		out = append(out, meta.Pubkey[:]...)
		out = append(out, flags)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(self.Data)))
	out = append(out, self.Data...)
	return
}

// Identifies the transaction, the same message signed again has the same hash
func (self *Transaction) Hash() (out [sha256.Size]byte, err error) {
	message, err := self.Message()
	if err != nil {
		return
	}
	return sha256.Sum256(message), nil
}

// Keys that have to sign, in order of appearance
func (self *Transaction) Signers() (out []runtime.Pubkey) {
	seen := make(map[runtime.Pubkey]struct{})
	for _, meta := range self.Accounts {
		if !meta.IsSigner {
			continue
		}
		if _, ok := seen[meta.Pubkey]; ok {
			continue
		}
		seen[meta.Pubkey] = struct{}{}
		out = append(out, meta.Pubkey)
	}
	return
}

// Adds or replaces the signature of the key's owner
func (self *Transaction) Sign(key ed25519.PrivateKey) (err error) {
	pubkey, err := runtime.PubkeyFromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return
	}

	isSigner := false
	for _, signer := range self.Signers() {
		if signer == pubkey {
			isSigner = true
			break
		}
	}
	if !isSigner {
		return fmt.Errorf("%w: %s", ErrUnexpectedSigner, pubkey)
	}

	message, err := self.Message()
	if err != nil {
		return
	}

	signature := Signature{Pubkey: pubkey, Signature: ed25519.Sign(key, message)}
	for i := range self.Signatures {
		if self.Signatures[i].Pubkey == pubkey {
			self.Signatures[i] = signature
			return
		}
	}
	self.Signatures = append(self.Signatures, signature)
	return
}

// Checks every declared signer signed the message
func (self *Transaction) Verify() (err error) {
	message, err := self.Message()
	if err != nil {
		return
	}

	signatures := make(map[runtime.Pubkey][]byte, len(self.Signatures))
	for _, s := range self.Signatures {
		signatures[s.Pubkey] = s.Signature
	}

	for _, signer := range self.Signers() {
		signature, ok := signatures[signer]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSignatureMissing, signer)
		}
		if !ed25519.Verify(ed25519.PublicKey(signer[:]), message, signature) {
			return fmt.Errorf("%w: %s", ErrInvalidSignature, signer)
		}
	}
	return
}
