package indexer

import (
	"context"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/logger"
	"github.com/t9fiction/Solana-Task-Manager/internal/repository"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"
)

// DefaultPollInterval is how often the ledger is scanned when the config
// does not override it.
const DefaultPollInterval = 15 * time.Second

// Indexer mirrors task accounts into Postgres so owner-filtered listings
// do not need a full program scan. Each poll is a snapshot read; the index
// always trails the ledger and is never consulted for writes.
type Indexer struct {
	ledger    ledger.Ledger
	programID solana.PublicKey
	repo      *repository.TaskIndexRepository
	interval  time.Duration
}

func New(l ledger.Ledger, programID solana.PublicKey, repo *repository.TaskIndexRepository, interval time.Duration) *Indexer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Indexer{
		ledger:    l,
		programID: programID,
		repo:      repo,
		interval:  interval,
	}
}

// Run polls until the context is cancelled.
func (ix *Indexer) Run(ctx context.Context) {
	ticker := time.NewTicker(ix.interval)
	defer ticker.Stop()

	logger.Info("indexer started", "interval", ix.interval.String())
	for {
		if err := ix.Sync(ctx); err != nil {
			logger.Error("indexer sync failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info("indexer stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sync performs one full scan-and-mirror pass.
func (ix *Indexer) Sync(ctx context.Context) error {
	d := task.Discriminator()
	accounts, err := ix.ledger.ListProgramAccounts(ctx, ix.programID, solana.MemcmpFilter{Offset: 0, Bytes: d[:]})
	if err != nil {
		return err
	}

	live := make([]string, 0, len(accounts))
	for seq, acc := range accounts {
		t, err := task.Decode(acc.Data)
		if err != nil {
			logger.Warn("skipping undecodable account", "address", acc.Address.String(), "error", err)
			continue
		}
		addr := acc.Address.String()
		live = append(live, addr)
		if err := ix.repo.Upsert(ctx, addr, int64(seq), t); err != nil {
			return err
		}
	}

	pruned, err := ix.repo.PruneMissing(ctx, live)
	if err != nil {
		return err
	}
	if pruned > 0 {
		logger.Info("pruned deleted tasks from index", "count", pruned)
	}
	return nil
}
