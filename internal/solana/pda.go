package solana

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

// Program-derived address (PDA) computation.
// A PDA is a 32-byte address derived from a set of seeds and a program ID,
// guaranteed to fall off the ed25519 curve so no private key can ever sign
// for it. Derivation must be reproduced identically by clients and by the
// on-chain authorization check; a mismatch is a hard validation failure.

const (
	// MaxSeeds is the maximum number of seeds accepted per derivation.
	MaxSeeds = 16

	// MaxSeedLength is the maximum byte length of a single seed. Task titles
	// are the longest seed this program derives from.
	MaxSeedLength = 100
)

// pdaMarker is appended to the hash input to domain-separate PDAs from
// other sha256 uses.
var pdaMarker = []byte("ProgramDerivedAddress")

var (
	ErrTooManySeeds   = errors.New("too many seeds")
	ErrSeedTooLong    = errors.New("seed exceeds maximum length")
	ErrAddressOnCurve = errors.New("derived address falls on the ed25519 curve")
	ErrNoViableBump   = errors.New("unable to find a viable bump seed")
)

// IsOnCurve reports whether the key decompresses to a valid ed25519 curve
// point, i.e. whether it could be a real signing key.
func IsOnCurve(pk PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}

// CreateProgramAddress derives the address for the given seeds and bump
// already appended by the caller. It fails with ErrAddressOnCurve if the
// candidate is a valid signing key.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, ErrTooManySeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, ErrSeedTooLong
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write(pdaMarker)

	var pk PublicKey
	copy(pk[:], h.Sum(nil))

	if IsOnCurve(pk) {
		return PublicKey{}, ErrAddressOnCurve
	}
	return pk, nil
}

// FindProgramAddress searches bump seeds from 255 downward until the
// candidate address falls off the curve, returning the address and the
// winning bump. Deterministic for fixed inputs.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	buf := make([][]byte, len(seeds), len(seeds)+1)
	copy(buf, seeds)
	for bump := 255; bump >= 0; bump-- {
		candidate, err := CreateProgramAddress(append(buf, []byte{uint8(bump)}), programID)
		if err == nil {
			return candidate, uint8(bump), nil
		}
		if !errors.Is(err, ErrAddressOnCurve) {
			return PublicKey{}, 0, err
		}
	}
	return PublicKey{}, 0, ErrNoViableBump
}
