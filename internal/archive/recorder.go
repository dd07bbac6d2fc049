package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewline/queue-api/internal/order"
)

// DB is the narrow database surface the recorder needs.
// Satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder writes terminal orders to postgres for durable history. The live
// queue never reads from it; failures are logged by the caller and dropped.
type Recorder struct {
	db DB
}

// Connect opens a pgx pool against the given database URL.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// New creates a Recorder over the given database.
func New(db DB) *Recorder {
	return &Recorder{db: db}
}

// EnsureSchema creates the history table if it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_history (
			id            UUID PRIMARY KEY,
			customer_name TEXT NOT NULL,
			items         TEXT[] NOT NULL,
			priority      TEXT NOT NULL,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			started_at    TIMESTAMPTZ,
			finished_at   TIMESTAMPTZ
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create order_history: %w", err)
	}
	return nil
}

// Record inserts a terminal order. Replays are ignored: terminal orders are
// immutable, so the first write wins.
func (r *Recorder) Record(ctx context.Context, o order.Order) error {
	query := `
		INSERT INTO order_history (id, customer_name, items, priority, status,
		                           created_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.CustomerName, o.Items, string(o.Priority), string(o.Status),
		o.CreatedAt, o.StartedAt, o.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}
