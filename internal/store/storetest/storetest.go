// Package storetest starts a migrated embedded Postgres for package tests.
package storetest

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/course-conditions/internal/store"
)

// NewPool starts an embedded Postgres, applies migrations and returns a pool.
// Everything is torn down through tb.Cleanup.
func NewPool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	ctx := context.Background()
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	port := uint32(40000 + rnd.Intn(4000))

	db, err := store.StartEmbedded(store.EmbeddedConfig{
		BaseDir:  tb.TempDir(),
		Port:     port,
		Database: "course_conditions_test",
	})
	if err != nil {
		tb.Fatalf("start embedded postgres: %v", err)
	}

	pool, err := pgxpool.New(ctx, db.URL())
	if err != nil {
		_ = db.Stop()
		tb.Fatalf("connect pg: %v", err)
	}
	tb.Cleanup(func() {
		pool.Close()
		_ = db.Stop()
	})

	if err := store.Migrate(ctx, pool, nil); err != nil {
		tb.Fatalf("apply migrations: %v", err)
	}
	return pool
}
