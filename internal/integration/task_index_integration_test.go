package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/t9fiction/Solana-Task-Manager/internal/indexer"
	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/repository"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

// Requires a Postgres pointed to by DATABASE_URL; skipped otherwise.
func TestIndexer_MirrorsAndPrunes(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer db.Close()

	applyMigrations(t, db)

	ctx := context.Background()
	if _, err := db.Exec(ctx, `TRUNCATE task_index`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	l := ledger.NewMemoryLedger()
	engine := task.NewEngine(l, task.ProgramID)
	repo := repository.NewTaskIndexRepository(db)
	ix := indexer.New(l, task.ProgramID, repo, 0)

	var raw [32]byte
	raw[0] = 7
	author, err := solana.PublicKeyFromBytes(raw[:])
	if err != nil {
		t.Fatalf("author key: %v", err)
	}
	recA, err := engine.Create(ctx, author, "index me", "first")
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	if _, err := engine.Create(ctx, author, "index me too", "second"); err != nil {
		t.Fatalf("create B: %v", err)
	}

	if err := ix.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	rows, err := repo.List(ctx, author.String(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("indexed %d rows, want 2", len(rows))
	}
	if rows[0].Title != "index me" || rows[1].Title != "index me too" {
		t.Fatalf("wrong order: %q, %q", rows[0].Title, rows[1].Title)
	}

	// completion is reflected on the next pass
	if _, _, err := engine.Complete(ctx, author, recA.Address); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := ix.Sync(ctx); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	got, err := repo.Get(ctx, recA.Address.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || !got.IsCompleted {
		t.Fatal("completion not mirrored into index")
	}

	// deletion prunes the row
	if err := engine.Delete(ctx, author, recA.Address); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ix.Sync(ctx); err != nil {
		t.Fatalf("third sync: %v", err)
	}
	got, err = repo.Get(ctx, recA.Address.String())
	if err != nil {
		t.Fatalf("get after prune: %v", err)
	}
	if got != nil {
		t.Fatal("deleted task still indexed")
	}
}

// A task deleted and recreated at the same address between two polls never
// goes through the prune path; the conflict update must still refresh every
// mirrored column, created_at included.
func TestIndexer_RecreateAtSameAddressRefreshesRow(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer db.Close()

	applyMigrations(t, db)

	ctx := context.Background()
	if _, err := db.Exec(ctx, `TRUNCATE task_index`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	l := ledger.NewMemoryLedger()
	clock := time.Unix(1_700_000_000, 0)
	engine := task.NewEngine(l, task.ProgramID).WithClock(func() time.Time { return clock })
	repo := repository.NewTaskIndexRepository(db)
	ix := indexer.New(l, task.ProgramID, repo, 0)

	var raw [32]byte
	raw[0] = 9
	author, err := solana.PublicKeyFromBytes(raw[:])
	if err != nil {
		t.Fatalf("author key: %v", err)
	}

	first, err := engine.Create(ctx, author, "phoenix", "first life")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := engine.Complete(ctx, author, first.Address); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := ix.Sync(ctx); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// delete and recreate before the next poll; the address stays live the
	// whole time, so only the upsert conflict path runs
	if err := engine.Delete(ctx, author, first.Address); err != nil {
		t.Fatalf("delete: %v", err)
	}
	clock = clock.Add(time.Hour)
	second, err := engine.Create(ctx, author, "phoenix", "second life")
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if second.Address != first.Address {
		t.Fatalf("recreate moved address: %s != %s", second.Address, first.Address)
	}
	if err := ix.Sync(ctx); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	got, err := repo.Get(ctx, first.Address.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("recreated task missing from index")
	}
	if got.CreatedAt != second.Task.CreatedAt {
		t.Fatalf("index kept stale created_at %d, want %d", got.CreatedAt, second.Task.CreatedAt)
	}
	if got.Description != "second life" || got.IsCompleted {
		t.Fatalf("index kept stale row: %+v", got)
	}
}
