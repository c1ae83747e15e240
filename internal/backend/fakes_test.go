package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"taskflow/internal/model"
)

type memLocal struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
}

func newMemLocal() *memLocal {
	return &memLocal{data: make(map[string]string)}
}

func (m *memLocal) Read(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memLocal) Write(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes++
}

type fakeSub struct {
	remote *fakeRemote
	owner  string
	ch     chan Snapshot
	once   sync.Once
}

func (s *fakeSub) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *fakeSub) Cancel() {
	s.remote.mu.Lock()
	defer s.remote.mu.Unlock()
	subs := s.remote.subs[s.owner]
	for i, sub := range subs {
		if sub == s {
			s.remote.subs[s.owner] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	s.once.Do(func() { close(s.ch) })
}

// fakeRemote is an in-memory document store. When gate is set, writes
// block until it is closed.
type fakeRemote struct {
	mu           sync.Mutex
	docs         map[string][]model.Task
	subs         map[string][]*fakeSub
	nextID       int
	failWith     error
	subscribeErr error
	gate         chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs: make(map[string][]model.Task),
		subs: make(map[string][]*fakeSub),
	}
}

func (r *fakeRemote) subscribers(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[owner])
}

// publishLocked sends the owner's list, newest first. r.mu must be held.
func (r *fakeRemote) publishLocked(owner string) {
	list := model.CloneTasks(r.docs[owner])
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	for _, sub := range r.subs[owner] {
		sub.ch <- Snapshot{Tasks: list}
	}
}

func (r *fakeRemote) failSubscribers(owner string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs[owner] {
		sub.ch <- Snapshot{Err: err}
	}
}

func (r *fakeRemote) Subscribe(_ context.Context, owner string) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subscribeErr != nil {
		return nil, r.subscribeErr
	}
	sub := &fakeSub{remote: r, owner: owner, ch: make(chan Snapshot, 32)}
	r.subs[owner] = append(r.subs[owner], sub)
	list := model.CloneTasks(r.docs[owner])
	sub.ch <- Snapshot{Tasks: list}
	return sub, nil
}

func (r *fakeRemote) write(fn func() error) error {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	return fn()
}

func (r *fakeRemote) Create(_ context.Context, owner string, task model.Task) error {
	return r.write(func() error {
		r.nextID++
		task.ID = fmt.Sprintf("doc-%d", r.nextID)
		r.docs[owner] = append(r.docs[owner], task)
		r.publishLocked(owner)
		return nil
	})
}

func (r *fakeRemote) Update(_ context.Context, owner, id string, patch model.Patch) error {
	return r.write(func() error {
		for i := range r.docs[owner] {
			if r.docs[owner][i].ID == id {
				patch.Apply(&r.docs[owner][i])
				r.publishLocked(owner)
				return nil
			}
		}
		return errors.New("no document to update")
	})
}

func (r *fakeRemote) Delete(_ context.Context, owner, id string) error {
	return r.write(func() error {
		var kept []model.Task
		for _, t := range r.docs[owner] {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		r.docs[owner] = kept
		r.publishLocked(owner)
		return nil
	})
}

func (r *fakeRemote) BatchCreate(_ context.Context, owner string, tasks []model.Task) error {
	return r.write(func() error {
		for _, t := range tasks {
			r.nextID++
			t.ID = fmt.Sprintf("doc-%d", r.nextID)
			r.docs[owner] = append(r.docs[owner], t)
		}
		r.publishLocked(owner)
		return nil
	})
}
