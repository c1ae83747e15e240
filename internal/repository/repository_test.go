package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

var created = time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "data", "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newTestStore opens a DocumentStore that only publishes its own writes.
func newTestStore(t *testing.T, db *gorm.DB) *DocumentStore {
	t.Helper()
	store := NewDocumentStore(db, WithPollInterval(0))
	t.Cleanup(store.Close)
	return store
}

func next(t *testing.T, sub backend.Subscription) backend.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return backend.Snapshot{}
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestKVStore(t *testing.T) {
	store := NewKVStore(openTestDB(t))

	_, ok := store.Read("missing")
	assert.False(t, ok)

	store.Write("k", "first")
	store.Write("k", "second")
	v, ok := store.Read("k")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestKVStoreBacksLocalSessions(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	b := backend.NewLocalBackend(store, "tasks:7")
	s := backend.NewSession(backend.Identity{UserID: "7", Anonymous: true}, b)
	require.NoError(t, s.Open(context.Background()))
	require.Len(t, s.Tasks(), 7)

	s.Create(context.Background(), model.Task{Title: "persisted"})

	reopened := backend.NewSession(backend.Identity{UserID: "7", Anonymous: true}, backend.NewLocalBackend(store, "tasks:7"))
	require.NoError(t, reopened.Open(context.Background()))
	assert.Len(t, reopened.Tasks(), 8)
}

func TestDocumentStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, openTestDB(t))
	defer store.Close()

	sub, err := store.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer sub.Cancel()
	assert.Empty(t, next(t, sub).Tasks)

	require.NoError(t, store.Create(ctx, "alice", model.Task{Title: "first", Status: model.StatusTodo, CreatedAt: created}))
	snap := next(t, sub)
	require.Len(t, snap.Tasks, 1)
	id := snap.Tasks[0].ID
	assert.NotEmpty(t, id)

	require.NoError(t, store.BatchCreate(ctx, "alice", []model.Task{
		{Title: "second", CreatedAt: created.Add(time.Minute)},
		{Title: "third", CreatedAt: created.Add(2 * time.Minute)},
	}))
	snap = next(t, sub)
	assert.Equal(t, []string{"third", "second", "first"}, titles(snap.Tasks))

	done := model.StatusDone
	at := created.Add(time.Hour)
	require.NoError(t, store.Update(ctx, "alice", id, model.Patch{Status: &done, CompletedAt: &at}))
	snap = next(t, sub)
	got := snap.Tasks[2]
	assert.Equal(t, model.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(at))

	require.NoError(t, store.Update(ctx, "alice", id, model.Patch{ClearCompletedAt: true}))
	assert.Nil(t, next(t, sub).Tasks[2].CompletedAt)

	require.NoError(t, store.Delete(ctx, "alice", id))
	assert.Equal(t, []string{"third", "second"}, titles(next(t, sub).Tasks))
}

func TestDocumentStoreUpdateMissing(t *testing.T) {
	store := newTestStore(t, openTestDB(t))
	title := "x"
	err := store.Update(context.Background(), "alice", "nope", model.Patch{Title: &title})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	assert.NoError(t, store.Delete(context.Background(), "alice", "nope"), "deleting a missing document succeeds")
}

func TestDocumentStoreIsolatesOwners(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, openTestDB(t))

	require.NoError(t, store.Create(ctx, "alice", model.Task{Title: "alice's", CreatedAt: created}))
	bob, err := store.Subscribe(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, next(t, bob).Tasks)

	title := "renamed"
	tasks, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	err = store.Update(ctx, "bob", tasks[0].ID, model.Patch{Title: &title})
	assert.ErrorIs(t, err, ErrDocumentNotFound, "owners can't touch each other's documents")

	select {
	case snap := <-bob.Snapshots():
		t.Fatalf("unexpected snapshot for bob: %+v", snap)
	default:
	}
}

func TestDocumentStoreKeepsLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, openTestDB(t))
	sub, err := store.Subscribe(ctx, "alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, "alice", model.Task{Title: "t", CreatedAt: created.Add(time.Duration(i) * time.Minute)}))
	}
	assert.Len(t, next(t, sub).Tasks, 3, "unread snapshots are replaced by newer ones")
}

func TestDocumentStoreCancel(t *testing.T) {
	store := newTestStore(t, openTestDB(t))
	sub, err := store.Subscribe(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, store.hub.count("alice"))

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, store.hub.count("alice"))
	for range sub.Snapshots() {
	}
}

func TestDocumentStoreDrivesRemoteSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, openTestDB(t))
	m := backend.NewManager(NewKVStore(openTestDB(t)), store)
	defer m.Close()

	s, err := m.SessionChanged(ctx, &backend.Identity{UserID: "alice"})
	require.NoError(t, err)
	require.NoError(t, s.WaitReady(ctx))

	require.NoError(t, s.Create(ctx, model.Task{Title: "synced", CreatedAt: created}).Wait(ctx))
	require.Eventually(t, func() bool { return len(s.Tasks()) == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = m.SessionChanged(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.hub.count("alice"))
}

func TestDocumentStoreSeesOtherProcessWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")
	open := func() *DocumentStore {
		db, err := NewDB(path)
		require.NoError(t, err)
		store := NewDocumentStore(db, WithPollInterval(20*time.Millisecond))
		t.Cleanup(func() {
			store.Close()
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
		return store
	}
	reader, writer := open(), open()

	sub, err := reader.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer sub.Cancel()
	assert.Empty(t, next(t, sub).Tasks)

	require.NoError(t, writer.Create(ctx, "alice", model.Task{Title: "from elsewhere", CreatedAt: created}))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			require.True(t, ok, "subscription closed")
			require.NoError(t, snap.Err)
			if len(snap.Tasks) == 1 {
				assert.Equal(t, "from elsewhere", snap.Tasks[0].Title)
				return
			}
		case <-deadline:
			t.Fatal("write from another store never reached the subscriber")
		}
	}
}

func TestDocumentStoreCloseStopsPolling(t *testing.T) {
	store := NewDocumentStore(openTestDB(t), WithPollInterval(time.Millisecond))
	sub, err := store.Subscribe(context.Background(), "alice")
	require.NoError(t, err)

	store.Close()
	store.Close()
	select {
	case <-store.done:
	default:
		t.Fatal("watcher still running after Close")
	}
	for range sub.Snapshots() {
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	u, err := repo.UpsertFromTelegram(ctx, 42, "Ada", "", "ada")
	require.NoError(t, err)
	assert.False(t, u.SignedIn)

	u, err = repo.UpsertFromTelegram(ctx, 42, "Ada", "Lovelace", "ada")
	require.NoError(t, err)
	found, err := repo.FindByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "Lovelace", found.LastName)

	_, err = repo.UpsertFromTelegram(ctx, 43, "Grace", "", "")
	require.NoError(t, err)

	require.NoError(t, repo.SetSignedIn(ctx, 42, true))
	signedIn, err := repo.ListSignedIn(ctx)
	require.NoError(t, err)
	require.Len(t, signedIn, 1)
	assert.Equal(t, int64(42), signedIn[0].TelegramID)

	require.NoError(t, repo.SetSignedIn(ctx, 42, false))
	signedIn, err = repo.ListSignedIn(ctx)
	require.NoError(t, err)
	assert.Empty(t, signedIn)

	assert.ErrorIs(t, repo.SetSignedIn(ctx, 99, true), gorm.ErrRecordNotFound)
}

func TestUpdateQuery(t *testing.T) {
	status := model.StatusDone
	date := model.Date("2025-02-01")
	query, args := updateQuery("alice", "id-1", model.Patch{Status: &status, TargetDate: &date, ClearCompletedAt: true}.Columns())

	assert.Equal(t, "UPDATE task_documents SET status = $1, target_date = $2, completed_at = $3 WHERE id = $4 AND owner_id = $5", query)
	assert.Equal(t, []any{"done", "2025-02-01", nil, "id-1", "alice"}, args)
}

func TestWithBusyTimeout(t *testing.T) {
	assert.Equal(t, "taskflow.db?_busy_timeout=5000", withBusyTimeout("taskflow.db"))
	assert.Equal(t, "file:x.db?cache=shared&_busy_timeout=5000", withBusyTimeout("file:x.db?cache=shared"))
	assert.Equal(t, "x.db?_busy_timeout=100", withBusyTimeout("x.db?_busy_timeout=100"))
}
