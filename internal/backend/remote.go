package backend

import (
	"context"
	"log"
	"sync"

	"taskflow/internal/model"
)

// RemoteBackend forwards mutations to the remote store and never touches
// the list itself: the list changes only when the subscription delivers.
type RemoteBackend struct {
	store     RemoteStore
	owner     string
	indicator *Indicator

	mu  sync.Mutex
	sub Subscription
}

func NewRemoteBackend(store RemoteStore, ownerID string, indicator *Indicator) *RemoteBackend {
	if indicator == nil {
		indicator = &Indicator{}
	}
	return &RemoteBackend{store: store, owner: ownerID, indicator: indicator}
}

func (b *RemoteBackend) Mode() Mode {
	return ModeRemote
}

// Open subscribes to the owner's collection. The sync indicator stays
// asserted until the first snapshot arrives.
func (b *RemoteBackend) Open(ctx context.Context, sink Sink) error {
	b.indicator.begin()
	sub, err := b.store.Subscribe(ctx, b.owner)
	if err != nil {
		b.indicator.end()
		return &OpError{Op: OpSubscribe, Err: err}
	}

	b.mu.Lock()
	if b.sub != nil {
		b.sub.Cancel()
	}
	b.sub = sub
	b.mu.Unlock()

	go b.listen(sub, sink)
	return nil
}

func (b *RemoteBackend) listen(sub Subscription, sink Sink) {
	var once sync.Once
	release := func() { once.Do(b.indicator.end) }
	defer release()

	for snap := range sub.Snapshots() {
		release()
		if snap.Err != nil {
			log.Printf("[warn] task sync for %s: %v", b.owner, snap.Err)
			sink.Fail(&OpError{Op: OpSubscribe, Err: snap.Err})
			continue
		}
		sink.Replace(snap.Tasks)
	}
}

// Close cancels the subscription. Writes already sent are left to finish.
func (b *RemoteBackend) Close() {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

func (b *RemoteBackend) Create(ctx context.Context, task model.Task) *Op {
	task = task.Clone()
	return b.run(ctx, OpCreate, func(ctx context.Context) error {
		return b.store.Create(ctx, b.owner, task)
	})
}

func (b *RemoteBackend) Update(ctx context.Context, id string, patch model.Patch) *Op {
	return b.run(ctx, OpUpdate, func(ctx context.Context) error {
		return b.store.Update(ctx, b.owner, id, patch)
	})
}

func (b *RemoteBackend) Delete(ctx context.Context, id string) *Op {
	return b.run(ctx, OpDelete, func(ctx context.Context) error {
		return b.store.Delete(ctx, b.owner, id)
	})
}

func (b *RemoteBackend) BatchCreate(ctx context.Context, tasks []model.Task) *Op {
	tasks = model.CloneTasks(tasks)
	return b.run(ctx, OpBatch, func(ctx context.Context) error {
		return b.store.BatchCreate(ctx, b.owner, tasks)
	})
}

// run sends one request in the background. The caller's cancellation is
// dropped: a request outlives the wait for it.
func (b *RemoteBackend) run(ctx context.Context, name string, fn func(context.Context) error) *Op {
	op := newOp(name)
	ctx = context.WithoutCancel(ctx)

	b.indicator.begin()
	go func() {
		err := fn(ctx)
		if err != nil {
			log.Printf("[warn] remote %s for %s: %v", name, b.owner, err)
		}
		b.indicator.end()
		op.finish(err)
	}()
	return op
}
