package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brewline/queue-api/internal/order"
)

type fakeDB struct {
	queries []string
	args    [][]any
	err     error
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return pgconn.CommandTag{}, db.err
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	rec := New(db)

	if err := rec.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(db.queries) != 1 || !strings.Contains(db.queries[0], "CREATE TABLE IF NOT EXISTS order_history") {
		t.Fatalf("unexpected queries: %v", db.queries)
	}
}

func TestRecord(t *testing.T) {
	db := &fakeDB{}
	rec := New(db)

	started := time.Date(2024, 6, 10, 9, 5, 0, 0, time.UTC)
	finished := started.Add(4 * time.Minute)
	o := order.Order{
		ID:           uuid.New(),
		CustomerName: "Alice",
		Items:        []string{"Latte", "Croissant"},
		Priority:     order.PriorityVIP,
		Status:       order.StatusCompleted,
		CreatedAt:    started.Add(-10 * time.Minute),
		StartedAt:    &started,
		FinishedAt:   &finished,
	}

	if err := rec.Record(context.Background(), o); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(db.queries) != 1 {
		t.Fatalf("exec called %d times, want 1", len(db.queries))
	}
	if !strings.Contains(db.queries[0], "INSERT INTO order_history") ||
		!strings.Contains(db.queries[0], "ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("unexpected query: %s", db.queries[0])
	}

	args := db.args[0]
	if len(args) != 8 {
		t.Fatalf("got %d args, want 8", len(args))
	}
	if args[0] != o.ID || args[1] != "Alice" {
		t.Errorf("id/name args = %v, %v", args[0], args[1])
	}
	if args[3] != "VIP" || args[4] != "completed" {
		t.Errorf("priority/status args = %v, %v", args[3], args[4])
	}
}

func TestRecordWrapsError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	rec := New(db)

	err := rec.Record(context.Background(), order.Order{ID: uuid.New()})
	if err == nil || !strings.Contains(err.Error(), "insert order history") {
		t.Fatalf("err = %v, want wrapped insert error", err)
	}
}
