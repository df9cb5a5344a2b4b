package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// Engine drives the task lifecycle against the ledger:
//
//	NonExistent -> Active(incomplete) -> Active(completed) -> NonExistent
//
// Every transition is a single conditional write computed against the bytes
// read beforehand, so the ledger serializes concurrent writers per address;
// a losing writer gets ledger.ErrConflict and must re-read.
type Engine struct {
	ledger    ledger.Ledger
	programID solana.PublicKey
	now       func() time.Time
}

// Record pairs a decoded task with its account address.
type Record struct {
	Address solana.PublicKey `json:"address"`
	Task    *Task            `json:"task"`
}

func NewEngine(l ledger.Ledger, programID solana.PublicKey) *Engine {
	return &Engine{
		ledger:    l,
		programID: programID,
		now:       time.Now,
	}
}

// WithClock overrides the creation timestamp source. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Create allocates a task account at the address derived from
// (author, title). Fails with ErrTaskAlreadyExists if the address is active.
func (e *Engine) Create(ctx context.Context, author solana.PublicKey, title, description string) (*Record, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	addr, _, err := DeriveAddress(e.programID, author, title)
	if err != nil {
		return nil, fmt.Errorf("derive address: %w", err)
	}

	t := &Task{
		Author:      author,
		Title:       title,
		Description: description,
		IsCompleted: false,
		CreatedAt:   e.now().Unix(),
	}
	data, err := Encode(t)
	if err != nil {
		return nil, err
	}

	err = e.ledger.Apply(ctx, ledger.WriteRequest{
		Address: addr,
		Caller:  author,
		Owner:   e.programID,
		Data:    data,
		Space:   MaxAccountSize,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			return nil, ErrTaskAlreadyExists
		}
		return nil, err
	}
	return &Record{Address: addr, Task: t}, nil
}

// Update replaces the description and nothing else. Only the stored author
// may call it.
func (e *Engine) Update(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey, description string) (*Record, error) {
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	stored, raw, err := e.load(ctx, caller, addr)
	if err != nil {
		return nil, err
	}

	updated := *stored
	updated.Description = description
	data, err := Encode(&updated)
	if err != nil {
		return nil, err
	}

	if err := e.swap(ctx, caller, addr, raw, data); err != nil {
		return nil, err
	}
	return &Record{Address: addr, Task: &updated}, nil
}

// Complete sets the completed flag. Completing an already-completed task is
// a no-op reported through the second return value; no write is issued and
// no other field can change.
func (e *Engine) Complete(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey) (*Record, bool, error) {
	stored, raw, err := e.load(ctx, caller, addr)
	if err != nil {
		return nil, false, err
	}

	if stored.IsCompleted {
		return &Record{Address: addr, Task: stored}, true, nil
	}

	updated := *stored
	updated.IsCompleted = true
	data, err := Encode(&updated)
	if err != nil {
		return nil, false, err
	}

	if err := e.swap(ctx, caller, addr, raw, data); err != nil {
		return nil, false, err
	}
	return &Record{Address: addr, Task: &updated}, false, nil
}

// Delete closes the account. The address returns to NonExistent and may be
// reused by a later Create with the same (author, title).
func (e *Engine) Delete(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey) error {
	_, raw, err := e.load(ctx, caller, addr)
	if err != nil {
		return err
	}
	return e.swap(ctx, caller, addr, raw, nil)
}

// Get reads and decodes a single task. Fails with ErrTitleNotFound if the
// address is vacant.
func (e *Engine) Get(ctx context.Context, addr solana.PublicKey) (*Record, error) {
	acc, err := e.ledger.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrTitleNotFound
	}
	t, err := Decode(acc.Data)
	if err != nil {
		return nil, err
	}
	return &Record{Address: addr, Task: t}, nil
}

// List returns all task accounts in ledger insertion order, optionally
// restricted to one author. Snapshot read, no isolation across calls.
func (e *Engine) List(ctx context.Context, owner *solana.PublicKey) ([]Record, error) {
	d := Discriminator()
	filters := []solana.MemcmpFilter{{Offset: 0, Bytes: d[:]}}
	if owner != nil {
		filters = append(filters, solana.MemcmpFilter{Offset: discriminatorLen, Bytes: owner.Bytes()})
	}

	accounts, err := e.ledger.ListProgramAccounts(ctx, e.programID, filters...)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(accounts))
	for _, acc := range accounts {
		t, err := Decode(acc.Data)
		if err != nil {
			// foreign or corrupt account under our program; skip it
			continue
		}
		records = append(records, Record{Address: acc.Address, Task: t})
	}
	return records, nil
}

// load reads, decodes, and authorizes a mutation target. It also re-derives
// the address from the stored (author, title); a mismatch is a hard
// validation failure.
func (e *Engine) load(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey) (*Task, []byte, error) {
	acc, err := e.ledger.GetAccount(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	if acc == nil {
		return nil, nil, ErrTitleNotFound
	}

	t, err := Decode(acc.Data)
	if err != nil {
		return nil, nil, err
	}

	derived, _, err := DeriveAddress(e.programID, t.Author, t.Title)
	if err != nil {
		return nil, nil, fmt.Errorf("re-derive address: %w", err)
	}
	if derived != addr {
		return nil, nil, ErrAddressMismatch
	}

	if !t.Author.Equals(caller) {
		return nil, nil, ErrUnauthorized
	}
	return t, acc.Data, nil
}

// swap submits the conditional write for a mutation, mapping a vanished
// account to ErrTitleNotFound.
func (e *Engine) swap(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey, expected, data []byte) error {
	err := e.ledger.Apply(ctx, ledger.WriteRequest{
		Address:  addr,
		Caller:   caller,
		Owner:    e.programID,
		Expected: expected,
		Data:     data,
	})
	if errors.Is(err, ledger.ErrNotFound) {
		return ErrTitleNotFound
	}
	return err
}
