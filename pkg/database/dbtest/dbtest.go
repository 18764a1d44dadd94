// Package dbtest opens a migrated PostgreSQL pool for repository tests.
// Tests are skipped unless DATABASE_URL is set.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/charity-events/backend/pkg/database"
)

// lockKey serializes test packages that share one database.
const lockKey = 7714301

// Open connects to DATABASE_URL, applies migrations and empties the activity
// and registration tables. Seeded categories are kept. The pool holds an
// advisory lock until the test ends.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, dsn, database.PoolOptions{MaxConns: 4}, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	lock, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		t.Fatalf("acquire: %v", err)
	}
	if _, err := lock.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		lock.Release()
		pool.Close()
		t.Fatalf("advisory lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = lock.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		lock.Release()
		pool.Close()
	})

	if err := database.Migrate(ctx, pool, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE event_registrations, activities RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

// CategoryID returns the id of a seeded category.
func CategoryID(t testing.TB, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(context.Background(), `SELECT id FROM event_categories WHERE category_name = $1`, name).Scan(&id); err != nil {
		t.Fatalf("category %q: %v", name, err)
	}
	return id
}
