package ledger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

func key(b byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func TestMemoryLedgerCreatePadsToSpace(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	addr, program := key(1), key(2)

	err := l.Apply(ctx, WriteRequest{
		Address: addr,
		Owner:   program,
		Data:    []byte{0xAA, 0xBB},
		Space:   8,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	acc, err := l.GetAccount(ctx, addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []byte{0xAA, 0xBB, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(acc.Data, want) {
		t.Fatalf("data = %x, want %x", acc.Data, want)
	}
}

func TestMemoryLedgerCreateConflicts(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	addr, program := key(1), key(2)

	req := WriteRequest{Address: addr, Owner: program, Data: []byte{1}, Space: 4}
	if err := l.Apply(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.Apply(ctx, req); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryLedgerCASRejectsStale(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	addr, program := key(1), key(2)

	if err := l.Apply(ctx, WriteRequest{Address: addr, Owner: program, Data: []byte{1}, Space: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}
	current, _ := l.GetAccount(ctx, addr)

	// first CAS wins
	if err := l.Apply(ctx, WriteRequest{Address: addr, Expected: current.Data, Data: []byte{2}}); err != nil {
		t.Fatalf("first cas: %v", err)
	}
	// replay against the stale snapshot loses
	err := l.Apply(ctx, WriteRequest{Address: addr, Expected: current.Data, Data: []byte{3}})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryLedgerCloseAndReuse(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	addr, program := key(1), key(2)

	if err := l.Apply(ctx, WriteRequest{Address: addr, Owner: program, Data: []byte{1}, Space: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}
	current, _ := l.GetAccount(ctx, addr)

	if err := l.Apply(ctx, WriteRequest{Address: addr, Expected: current.Data, Data: nil}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if acc, _ := l.GetAccount(ctx, addr); acc != nil {
		t.Fatal("address must be vacant after close")
	}

	// the address is reusable
	if err := l.Apply(ctx, WriteRequest{Address: addr, Owner: program, Data: []byte{9}, Space: 4}); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}

func TestMemoryLedgerSpaceEnforced(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	addr, program := key(1), key(2)

	err := l.Apply(ctx, WriteRequest{Address: addr, Owner: program, Data: []byte{1, 2, 3}, Space: 2})
	if !errors.Is(err, ErrSpaceExceeded) {
		t.Fatalf("expected ErrSpaceExceeded on create, got %v", err)
	}

	if err := l.Apply(ctx, WriteRequest{Address: addr, Owner: program, Data: []byte{1}, Space: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	current, _ := l.GetAccount(ctx, addr)
	err = l.Apply(ctx, WriteRequest{Address: addr, Expected: current.Data, Data: []byte{1, 2, 3}})
	if !errors.Is(err, ErrSpaceExceeded) {
		t.Fatalf("expected ErrSpaceExceeded on update, got %v", err)
	}
}

func TestMemoryLedgerListFiltersAndOrder(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	program, foreign := key(2), key(3)

	for i := byte(10); i < 13; i++ {
		err := l.Apply(ctx, WriteRequest{Address: key(i), Owner: program, Data: []byte{i, 0xCC}, Space: 4})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if err := l.Apply(ctx, WriteRequest{Address: key(20), Owner: foreign, Data: []byte{20}, Space: 4}); err != nil {
		t.Fatalf("create foreign: %v", err)
	}

	all, err := l.ListProgramAccounts(ctx, program)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(all))
	}
	for i, acc := range all {
		if acc.Data[0] != byte(10+i) {
			t.Fatalf("insertion order broken at %d", i)
		}
	}

	matched, err := l.ListProgramAccounts(ctx, program, solana.MemcmpFilter{Offset: 0, Bytes: []byte{11}})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(matched) != 1 || matched[0].Data[0] != 11 {
		t.Fatalf("memcmp filter mismatch: %+v", matched)
	}

	// filters that read past the end never match
	far, err := l.ListProgramAccounts(ctx, program, solana.MemcmpFilter{Offset: 100, Bytes: []byte{1}})
	if err != nil {
		t.Fatalf("far filter: %v", err)
	}
	if len(far) != 0 {
		t.Fatalf("out-of-range filter must match nothing")
	}
}
