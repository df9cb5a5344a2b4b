package ledger

import (
	"context"
	"errors"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// Account is a stored ledger account. Data always spans the full allocated
// space; encoded records may leave trailing padding.
type Account struct {
	Address solana.PublicKey
	Owner   solana.PublicKey
	Data    []byte
}

// WriteRequest is a single atomic conditional write against one address.
//
//   - Expected == nil: the address must hold no account (create).
//   - Expected != nil: the current account bytes must equal Expected exactly.
//   - Data == nil: close the account and release the address.
//   - Data != nil: desired post-state, padded into the allocated space.
//
// Space is the allocation size on create and is ignored otherwise; accounts
// cannot be resized after allocation.
type WriteRequest struct {
	Address  solana.PublicKey
	Caller   solana.PublicKey
	Owner    solana.PublicKey
	Expected []byte
	Data     []byte
	Space    uint64
}

var (
	// ErrConflict means the precondition failed: the account exists when it
	// must not, or its bytes no longer match Expected. The caller must
	// re-read before retrying.
	ErrConflict = errors.New("ledger: conflicting write")

	// ErrNotFound means the target address holds no account.
	ErrNotFound = errors.New("ledger: account not found")

	// ErrSpaceExceeded means the post-state does not fit the allocation.
	ErrSpaceExceeded = errors.New("ledger: data exceeds allocated space")

	// ErrUnknownOutcome means the submission may or may not have applied
	// (timeout or transport failure mid-flight). Never retried blindly.
	ErrUnknownOutcome = errors.New("ledger: transition outcome unknown")
)

// Ledger is the external source of truth. All writes are atomic per address;
// concurrent writers against the same address see exactly one commit, the
// rest fail with ErrConflict.
type Ledger interface {
	// GetAccount returns the account at addr, or (nil, nil) if the address
	// is vacant.
	GetAccount(ctx context.Context, addr solana.PublicKey) (*Account, error)

	// ListProgramAccounts returns a snapshot of all accounts owned by
	// programID, in ledger insertion order, optionally filtered by
	// data-prefix matches. No isolation across calls.
	ListProgramAccounts(ctx context.Context, programID solana.PublicKey, filters ...solana.MemcmpFilter) ([]Account, error)

	// Apply commits a single conditional write, or rejects it.
	Apply(ctx context.Context, req WriteRequest) error
}
