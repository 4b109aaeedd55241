package runtime

import (
	"bytes"
	"encoding/json"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const PUBKEY_LENGTH = 32

// Address of an account, an ed25519 public key or a program derived address
type Pubkey [PUBKEY_LENGTH]byte

var (
	SystemProgramId = Pubkey{}
	SysvarRentId    = MustParsePubkey("SysvarRent111111111111111111111111111111111")
)

func ParsePubkey(s string) (out Pubkey, err error) {
	decoded := base58.Decode(s)
	if len(decoded) != PUBKEY_LENGTH {
		err = ErrInvalidPubkey
		return
	}
	copy(out[:], decoded)
	return
}

func MustParsePubkey(s string) Pubkey {
	out, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return out
}

func PubkeyFromBytes(b []byte) (out Pubkey, err error) {
	if len(b) != PUBKEY_LENGTH {
		err = ErrInvalidPubkey
		return
	}
	copy(out[:], b)
	return
}

func (self Pubkey) String() string {
	return base58.Encode(self[:])
}

func (self Pubkey) Bytes() []byte {
	return self[:]
}

func (self Pubkey) IsZero() bool {
	return self == Pubkey{}
}

func (self Pubkey) Compare(other Pubkey) int {
	return bytes.Compare(self[:], other[:])
}

func (self Pubkey) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *Pubkey) UnmarshalText(text []byte) (err error) {
	*self, err = ParsePubkey(string(text))
	return
}

func (self Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

func (self *Pubkey) UnmarshalJSON(data []byte) (err error) {
	var s string
	err = json.Unmarshal(data, &s)
	if err != nil {
		return
	}
	return self.UnmarshalText([]byte(s))
}
