package ledger

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

type memAccount struct {
	owner solana.PublicKey
	data  []byte
	seq   uint64
}

// MemoryLedger is an in-process Ledger with the same atomicity semantics as
// the external service: one mutex serializes all writes, so concurrent
// transitions against one address resolve to exactly one commit. Backs unit
// tests and local development.
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*memAccount
	seq      uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[solana.PublicKey]*memAccount),
	}
}

func (l *MemoryLedger) GetAccount(_ context.Context, addr solana.PublicKey) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[addr]
	if !ok {
		return nil, nil
	}
	return &Account{
		Address: addr,
		Owner:   acc.owner,
		Data:    bytes.Clone(acc.data),
	}, nil
}

func (l *MemoryLedger) ListProgramAccounts(_ context.Context, programID solana.PublicKey, filters ...solana.MemcmpFilter) ([]Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	type keyed struct {
		addr solana.PublicKey
		acc  *memAccount
	}
	var matched []keyed
	for addr, acc := range l.accounts {
		if acc.owner != programID {
			continue
		}
		if !matchesFilters(acc.data, filters) {
			continue
		}
		matched = append(matched, keyed{addr: addr, acc: acc})
	}

	// insertion order
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].acc.seq < matched[j].acc.seq
	})

	out := make([]Account, 0, len(matched))
	for _, m := range matched {
		out = append(out, Account{
			Address: m.addr,
			Owner:   m.acc.owner,
			Data:    bytes.Clone(m.acc.data),
		})
	}
	return out, nil
}

func matchesFilters(data []byte, filters []solana.MemcmpFilter) bool {
	for _, f := range filters {
		end := f.Offset + len(f.Bytes)
		if f.Offset < 0 || end > len(data) {
			return false
		}
		if !bytes.Equal(data[f.Offset:end], f.Bytes) {
			return false
		}
	}
	return true
}

func (l *MemoryLedger) Apply(_ context.Context, req WriteRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists := l.accounts[req.Address]

	if req.Expected == nil {
		// create: address must be vacant
		if exists {
			return ErrConflict
		}
		if req.Data == nil {
			return ErrNotFound
		}
		if uint64(len(req.Data)) > req.Space {
			return ErrSpaceExceeded
		}
		buf := make([]byte, req.Space)
		copy(buf, req.Data)
		l.seq++
		l.accounts[req.Address] = &memAccount{
			owner: req.Owner,
			data:  buf,
			seq:   l.seq,
		}
		return nil
	}

	if !exists {
		return ErrNotFound
	}
	if !bytes.Equal(current.data, req.Expected) {
		return ErrConflict
	}

	if req.Data == nil {
		// close: address becomes reusable
		delete(l.accounts, req.Address)
		return nil
	}

	if len(req.Data) > len(current.data) {
		return ErrSpaceExceeded
	}
	buf := make([]byte, len(current.data))
	copy(buf, req.Data)
	current.data = buf
	return nil
}
