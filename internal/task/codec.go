package task

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// Account layout:
//
//	[0:8]   discriminator = sha256("account:Task")[:8]
//	[8:40]  author public key
//	        u32 LE title length, title bytes (<= 100)
//	        u32 LE description length, description bytes (<= 1000)
//	        1-byte completed flag
//	        8-byte LE signed created_at (unix seconds)
//
// Accounts are always allocated at MaxAccountSize regardless of content
// length; the ledger cannot resize an allocation cheaply, so the maximum is
// reserved up front and shorter records leave trailing padding.

const discriminatorLen = 8

// MaxAccountSize is the allocation size for every task account.
const MaxAccountSize = discriminatorLen + solana.PublicKeySize +
	4 + MaxTitleLen +
	4 + MaxDescriptionLen +
	1 + 8

// minAccountSize is the smallest well-formed record: both strings empty.
const minAccountSize = discriminatorLen + solana.PublicKeySize + 4 + 4 + 1 + 8

// Discriminator identifies a task account. First 8 bytes of
// sha256("account:Task").
func Discriminator() [discriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:Task"))
	var d [discriminatorLen]byte
	copy(d[:], sum[:discriminatorLen])
	return d
}

// Encode serializes a task. Validation is front-loaded: no bytes are
// produced if any bound is violated.
func Encode(t *Task) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, minAccountSize+len(t.Title)+len(t.Description))

	d := Discriminator()
	buf = append(buf, d[:]...)
	buf = append(buf, t.Author[:]...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Title)))
	buf = append(buf, t.Title...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Description)))
	buf = append(buf, t.Description...)

	if t.IsCompleted {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.CreatedAt))

	return buf, nil
}

// Decode deserializes a task account. All-or-nothing: on any failure the
// returned task is nil and no partial state escapes. Trailing padding after
// the record is permitted, since allocations always reserve MaxAccountSize.
func Decode(data []byte) (*Task, error) {
	if len(data) < minAccountSize {
		return nil, fmt.Errorf("%w: %d bytes is below the fixed-field minimum", ErrDecode, len(data))
	}

	d := Discriminator()
	off := 0
	for i := range d {
		if data[i] != d[i] {
			return nil, fmt.Errorf("%w: discriminator mismatch", ErrDecode)
		}
	}
	off += discriminatorLen

	var t Task
	copy(t.Author[:], data[off:off+solana.PublicKeySize])
	off += solana.PublicKeySize

	title, n, err := readString(data[off:], MaxTitleLen)
	if err != nil {
		return nil, fmt.Errorf("%w: title: %v", ErrDecode, err)
	}
	t.Title = title
	off += n

	desc, n, err := readString(data[off:], MaxDescriptionLen)
	if err != nil {
		return nil, fmt.Errorf("%w: description: %v", ErrDecode, err)
	}
	t.Description = desc
	off += n

	if len(data)-off < 1+8 {
		return nil, fmt.Errorf("%w: truncated fixed tail", ErrDecode)
	}
	t.IsCompleted = data[off] != 0
	off++
	t.CreatedAt = int64(binary.LittleEndian.Uint64(data[off : off+8]))

	return &t, nil
}

// readString reads a u32-length-prefixed string, rejecting prefixes that run
// past the buffer end or exceed the field bound.
func readString(data []byte, maxLen int) (string, int, error) {
	if len(data) < 4 {
		return "", 0, fmt.Errorf("truncated length prefix")
	}
	n := binary.LittleEndian.Uint32(data)
	if n > uint32(maxLen) {
		return "", 0, fmt.Errorf("length %d exceeds bound %d", n, maxLen)
	}
	if uint32(len(data)-4) < n {
		return "", 0, fmt.Errorf("length %d runs past buffer end", n)
	}
	return string(data[4 : 4+n]), 4 + int(n), nil
}

// HasDiscriminator reports whether raw account data starts with the task
// discriminator. Used to skip foreign account types during program scans.
func HasDiscriminator(data []byte) bool {
	if len(data) < discriminatorLen {
		return false
	}
	d := Discriminator()
	for i := range d {
		if data[i] != d[i] {
			return false
		}
	}
	return true
}
