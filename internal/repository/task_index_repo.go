package repository

import (
	"context"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/task"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexedTask is one row of the off-chain task index. Rows mirror decoded
// ledger accounts and carry no authority of their own.
type IndexedTask struct {
	Address     string    `db:"address"`
	Author      string    `db:"author"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   int64     `db:"created_at"`
	Seq         int64     `db:"seq"`
	IndexedAt   time.Time `db:"indexed_at"`
}

type TaskIndexRepository struct {
	db *pgxpool.Pool
}

func NewTaskIndexRepository(db *pgxpool.Pool) *TaskIndexRepository {
	return &TaskIndexRepository{db: db}
}

// Upsert mirrors one decoded account into the index. Seq preserves ledger
// insertion order across polls.
func (r *TaskIndexRepository) Upsert(ctx context.Context, address string, seq int64, t *task.Task) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO task_index (address, author, title, description, is_completed, created_at, seq, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (address) DO UPDATE SET
			description = EXCLUDED.description,
			is_completed = EXCLUDED.is_completed,
			created_at = EXCLUDED.created_at,
			seq = EXCLUDED.seq,
			indexed_at = now()`,
		address, t.Author.String(), t.Title, t.Description, t.IsCompleted, t.CreatedAt, seq)
	return err
}

// PruneMissing removes rows whose address no longer exists on the ledger.
func (r *TaskIndexRepository) PruneMissing(ctx context.Context, liveAddresses []string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM task_index WHERE NOT (address = ANY($1))`, liveAddresses)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// List returns indexed tasks in ledger insertion order, optionally filtered
// to one author.
func (r *TaskIndexRepository) List(ctx context.Context, author string, limit int) ([]*IndexedTask, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows pgx.Rows
	var err error
	if author != "" {
		rows, err = r.db.Query(ctx, `
			SELECT address, author, title, description, is_completed, created_at, seq, indexed_at
			FROM task_index WHERE author = $1 ORDER BY seq LIMIT $2`, author, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT address, author, title, description, is_completed, created_at, seq, indexed_at
			FROM task_index ORDER BY seq LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*IndexedTask
	for rows.Next() {
		var it IndexedTask
		if err := rows.Scan(&it.Address, &it.Author, &it.Title, &it.Description,
			&it.IsCompleted, &it.CreatedAt, &it.Seq, &it.IndexedAt); err != nil {
			return nil, err
		}
		res = append(res, &it)
	}
	return res, rows.Err()
}

// Get returns one indexed task, or nil if the address is not indexed.
func (r *TaskIndexRepository) Get(ctx context.Context, address string) (*IndexedTask, error) {
	var it IndexedTask
	err := r.db.QueryRow(ctx, `
		SELECT address, author, title, description, is_completed, created_at, seq, indexed_at
		FROM task_index WHERE address = $1`, address).
		Scan(&it.Address, &it.Author, &it.Title, &it.Description,
			&it.IsCompleted, &it.CreatedAt, &it.Seq, &it.IndexedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}
