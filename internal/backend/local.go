package backend

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/model"
	"taskflow/internal/planner"
)

// DefaultLocalKey is the local store key of an anonymous task list.
const DefaultLocalKey = "taskflow_ai_tasks"

// LocalOption configures a LocalBackend.
type LocalOption func(*LocalBackend)

// WithClock overrides the time source used for seed tasks.
func WithClock(now func() time.Time) LocalOption {
	return func(b *LocalBackend) {
		b.now = now
	}
}

// WithIDs overrides identifier generation.
func WithIDs(newID func() string) LocalOption {
	return func(b *LocalBackend) {
		b.newID = newID
	}
}

// LocalBackend keeps the list in memory and writes all of it to the local
// store after every mutation. Every operation completes before returning.
type LocalBackend struct {
	store LocalStore
	key   string
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	tasks []model.Task
	sink  Sink

	// deliveryMu orders Replace calls; it is taken before mu is released.
	deliveryMu sync.Mutex
}

func NewLocalBackend(store LocalStore, key string, opts ...LocalOption) *LocalBackend {
	b := &LocalBackend{
		store: store,
		key:   key,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *LocalBackend) Mode() Mode {
	return ModeLocal
}

// Open reads the stored list. A missing or corrupt entry is replaced by the
// sample tasks, which are persisted immediately.
func (b *LocalBackend) Open(_ context.Context, sink Sink) error {
	b.mu.Lock()
	b.sink = sink
	if !b.load() {
		b.tasks = planner.SeedTasks(b.now(), b.newID)
		b.persist()
	}
	b.notifyLocked()
	return nil
}

func (b *LocalBackend) load() bool {
	raw, ok := b.store.Read(b.key)
	if !ok {
		return false
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		log.Printf("[warn] local tasks under %q are corrupt, reseeding: %v", b.key, err)
		return false
	}
	b.tasks = tasks
	return true
}

func (b *LocalBackend) Close() {
	b.mu.Lock()
	b.sink = nil
	b.mu.Unlock()
}

func (b *LocalBackend) Create(_ context.Context, task model.Task) *Op {
	b.mutate(func() {
		b.tasks = append(b.tasks, b.withID(task))
	})
	return resolvedOp(OpCreate, nil)
}

// Update patches the task with id. Unknown ids are ignored.
func (b *LocalBackend) Update(_ context.Context, id string, patch model.Patch) *Op {
	b.mutate(func() {
		for i := range b.tasks {
			if b.tasks[i].ID == id {
				patch.Apply(&b.tasks[i])
				return
			}
		}
	})
	return resolvedOp(OpUpdate, nil)
}

func (b *LocalBackend) Delete(_ context.Context, id string) *Op {
	b.mutate(func() {
		kept := b.tasks[:0]
		for _, t := range b.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		b.tasks = kept
	})
	return resolvedOp(OpDelete, nil)
}

func (b *LocalBackend) BatchCreate(_ context.Context, tasks []model.Task) *Op {
	b.mutate(func() {
		for _, t := range tasks {
			b.tasks = append(b.tasks, b.withID(t))
		}
	})
	return resolvedOp(OpBatch, nil)
}

func (b *LocalBackend) withID(t model.Task) model.Task {
	t = t.Clone()
	if t.ID == "" {
		t.ID = b.newID()
	}
	return t
}

// mutate applies fn, persists the whole list and then signals the change.
func (b *LocalBackend) mutate(fn func()) {
	b.mu.Lock()
	fn()
	b.persist()
	b.notifyLocked()
}

func (b *LocalBackend) persist() {
	tasks := b.tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		log.Printf("[warn] encode local tasks: %v", err)
		return
	}
	b.store.Write(b.key, string(data))
}

// notifyLocked snapshots the list while b.mu is held, then hands the mutex
// over to deliveryMu so snapshots reach the sink in mutation order. It
// releases b.mu. A sink must not mutate the backend from Replace.
func (b *LocalBackend) notifyLocked() {
	sink := b.sink
	snapshot := model.CloneTasks(b.tasks)
	b.deliveryMu.Lock()
	b.mu.Unlock()
	defer b.deliveryMu.Unlock()

	if sink != nil {
		sink.Replace(snapshot)
	}
}
