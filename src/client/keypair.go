package client

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/runtime"

	"github.com/btcsuite/btcd/btcutil/base58"
)

type Keypair struct {
	Pubkey  runtime.Pubkey
	private ed25519.PrivateKey
}

func NewKeypair() (self *Keypair, err error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return
	}
	return KeypairFromPrivateKey(private)
}

func KeypairFromSeed(seed []byte) (self *Keypair, err error) {
	if len(seed) != ed25519.SeedSize {
		err = fmt.Errorf("%w: seed must have %d bytes", ErrInvalidKeypair, ed25519.SeedSize)
		return
	}
	return KeypairFromPrivateKey(ed25519.NewKeyFromSeed(seed))
}

func KeypairFromPrivateKey(private ed25519.PrivateKey) (self *Keypair, err error) {
	if len(private) != ed25519.PrivateKeySize {
		err = ErrInvalidKeypair
		return
	}

	self = new(Keypair)
	self.private = private
	self.Pubkey, err = runtime.PubkeyFromBytes(private.Public().(ed25519.PublicKey))
	return
}

// Parses the base58 form of the 64 byte private key
func ParseKeypair(s string) (self *Keypair, err error) {
	return KeypairFromPrivateKey(ed25519.PrivateKey(base58.Decode(s)))
}

// Base58 form of the 64 byte private key
func (self *Keypair) Secret() string {
	return base58.Encode(self.private)
}

func (self *Keypair) Sign(tx *ledger.Transaction) error {
	return tx.Sign(self.private)
}

func (self *Keypair) Meta(isWritable bool) runtime.AccountMeta {
	return runtime.NewAccountMeta(self.Pubkey, true, isWritable)
}
