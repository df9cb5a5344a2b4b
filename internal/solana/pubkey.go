package solana

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeySize is the byte length of an ed25519 public key / account address.
const PublicKeySize = 32

// PublicKey is a 32-byte account address. It is used both for wallet keys and
// for program-derived addresses, which are valid addresses but not valid
// signing keys.
type PublicKey [PublicKeySize]byte

var ErrInvalidPublicKey = errors.New("invalid public key")

// PublicKeyFromBase58 parses a base58-encoded address.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	var pk PublicKey
	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(decoded) != PublicKeySize {
		return pk, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, PublicKeySize, len(decoded))
	}
	copy(pk[:], decoded)
	return pk, nil
}

// PublicKeyFromBytes copies a raw 32-byte key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, PublicKeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// MustPublicKeyFromBase58 is PublicKeyFromBase58 that panics on error.
// Intended for constants such as program IDs.
func MustPublicKeyFromBase58(s string) PublicKey {
	pk, err := PublicKeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 form.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns a copy of the raw key bytes.
func (pk PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk[:])
	return b
}

// IsZero reports whether the key is the all-zero address.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// Equals compares two keys byte-wise.
func (pk PublicKey) Equals(other PublicKey) bool {
	return pk == other
}

// MarshalText implements encoding.TextMarshaler (base58), so keys render
// readably in JSON payloads.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := PublicKeyFromBase58(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}
