package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

// openTestPool connects to TEST_PG_URL with at most maxConns pooled
// connections.
func openTestPool(t *testing.T, maxConns int32) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_PG_URL")
	if url == "" {
		t.Skip("TEST_PG_URL not set")
	}
	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.MaxConns = maxConns
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func waitForTasks(t *testing.T, sub backend.Subscription, n int) backend.Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			require.True(t, ok, "subscription closed")
			require.NoError(t, snap.Err)
			if len(snap.Tasks) == n {
				return snap
			}
		case <-deadline:
			t.Fatalf("no snapshot with %d tasks", n)
			return backend.Snapshot{}
		}
	}
}

func TestPgDocumentStoreSubscriptionsDontHoldPoolConns(t *testing.T) {
	const maxConns = 2
	pool := openTestPool(t, maxConns)
	store := NewPgDocumentStore(pool)
	t.Cleanup(store.Close)

	ctx := context.Background()
	require.NoError(t, store.EnsureTable(ctx))
	owner := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM task_documents WHERE owner_id = $1`, owner)
	})

	var subs []backend.Subscription
	for i := 0; i < maxConns*3; i++ {
		sub, err := store.Subscribe(ctx, owner)
		require.NoError(t, err)
		t.Cleanup(sub.Cancel)
		assert.Empty(t, waitForTasks(t, sub, 0).Tasks)
		subs = append(subs, sub)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, store.Create(writeCtx, owner, model.Task{Title: "shared", Status: model.StatusTodo, CreatedAt: created}))

	for _, sub := range subs {
		snap := waitForTasks(t, sub, 1)
		assert.Equal(t, "shared", snap.Tasks[0].Title)
	}
	assert.LessOrEqual(t, pool.Stat().TotalConns(), int32(maxConns))
}

func TestPgDocumentStoreClose(t *testing.T) {
	pool := openTestPool(t, 2)
	store := NewPgDocumentStore(pool)
	ctx := context.Background()
	require.NoError(t, store.EnsureTable(ctx))

	sub, err := store.Subscribe(ctx, "test-"+uuid.NewString())
	require.NoError(t, err)
	store.Close()
	for range sub.Snapshots() {
	}

	_, err = store.Subscribe(ctx, "alice")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
