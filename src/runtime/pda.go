package runtime

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

const (
	MAX_SEED_LENGTH = 32
	MAX_SEEDS       = 16
)

var (
	pdaMarker = []byte("ProgramDerivedAddress")

	// First seed of every escrow authority
	EscrowSeedPrefix = []byte("project")
)

// Derives a keyless address from seeds. Fails if the hash lands on the ed25519 curve,
// such address could have a private key.
func CreateProgramAddress(seeds [][]byte, programId Pubkey) (out Pubkey, err error) {
	if len(seeds) > MAX_SEEDS {
		err = ErrMaxSeedLengthExceeded
		return
	}

	hasher := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MAX_SEED_LENGTH {
			err = ErrMaxSeedLengthExceeded
			return
		}
		hasher.Write(seed)
	}
	hasher.Write(programId[:])
	hasher.Write(pdaMarker)
	copy(out[:], hasher.Sum(nil))

	if IsOnCurve(out[:]) {
		err = ErrInvalidSeeds
		return Pubkey{}, err
	}
	return
}

// Searches for the first bump seed, starting from 255, that gives a valid program address
func FindProgramAddress(seeds [][]byte, programId Pubkey) (out Pubkey, bump uint8, err error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for i := 255; i >= 0; i-- {
		bump = uint8(i)
		withBump[len(seeds)] = []byte{bump}
		out, err = CreateProgramAddress(withBump, programId)
		if err == nil {
			return
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return
		}
	}
	err = ErrInvalidSeeds
	return
}

func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// Seeds (with the canonical bump) of the keyless authority allowed to move lamports out of a program owned account
func EscrowSeeds(programId, account Pubkey) (seeds [][]byte, err error) {
	seeds = [][]byte{EscrowSeedPrefix, account.Bytes()}
	_, bump, err := FindProgramAddress(seeds, programId)
	if err != nil {
		return
	}
	seeds = append(seeds, []byte{bump})
	return
}

func EscrowAuthority(programId, account Pubkey) (out Pubkey, err error) {
	out, _, err = FindProgramAddress([][]byte{EscrowSeedPrefix, account.Bytes()}, programId)
	return
}
