package db

import (
	"context"

	"github.com/t9fiction/Solana-Task-Manager/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the index database pool. The ledger remains the source of
// truth; Postgres only serves the indexed read path.
func Connect(dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("index database connected")
	return pool
}
