package repository

import (
	"sync"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

// snapshotHub fans owner snapshots out to subscribers. Each subscriber holds
// at most one pending snapshot: a newer one replaces an unread older one,
// since every snapshot carries the full list.
type snapshotHub struct {
	mu     sync.Mutex
	subs   map[string]map[*hubSubscription]struct{}
	closed bool
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{subs: make(map[string]map[*hubSubscription]struct{})}
}

type hubSubscription struct {
	hub   *snapshotHub
	owner string
	ch    chan backend.Snapshot
}

func (s *hubSubscription) Snapshots() <-chan backend.Snapshot {
	return s.ch
}

func (s *hubSubscription) Cancel() {
	s.hub.remove(s)
}

// subscribe registers a subscriber for owner and delivers load's result as
// its first snapshot. Publishing for owner is held off meanwhile.
func (h *snapshotHub) subscribe(owner string, load func() ([]taskDocument, error)) *hubSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &hubSubscription{hub: h, owner: owner, ch: make(chan backend.Snapshot, 1)}
	if h.closed {
		close(sub.ch)
		return sub
	}
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[*hubSubscription]struct{})
	}
	h.subs[owner][sub] = struct{}{}
	h.deliverLocked(sub, snapshotOf(load()))
	return sub
}

// publish loads owner's list once and hands it to every subscriber. The
// load runs under the hub lock so snapshots go out in write order.
func (h *snapshotHub) publish(owner string, load func() ([]taskDocument, error)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subs[owner]) == 0 {
		return
	}
	snap := snapshotOf(load())
	for sub := range h.subs[owner] {
		h.deliverLocked(sub, snap)
	}
}

// deliverLocked replaces any unread snapshot with snap. A failed snapshot
// ends the subscription. h.mu must be held.
func (h *snapshotHub) deliverLocked(sub *hubSubscription, snap backend.Snapshot) {
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- snap
	if snap.Err != nil {
		h.removeLocked(sub)
	}
}

func (h *snapshotHub) remove(sub *hubSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *snapshotHub) removeLocked(sub *hubSubscription) {
	subs, ok := h.subs[sub.owner]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, sub.owner)
	}
	close(sub.ch)
}

// owners lists every owner with at least one subscriber.
func (h *snapshotHub) owners() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.subs))
	for owner := range h.subs {
		out = append(out, owner)
	}
	return out
}

// fail delivers err to every subscriber, ending their subscriptions.
func (h *snapshotHub) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subs {
		for sub := range subs {
			h.deliverLocked(sub, backend.Snapshot{Err: err})
		}
	}
}

func (h *snapshotHub) count(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}

// close ends every subscription.
func (h *snapshotHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, subs := range h.subs {
		for sub := range subs {
			h.removeLocked(sub)
		}
	}
}

func snapshotOf(docs []taskDocument, err error) backend.Snapshot {
	if err != nil {
		return backend.Snapshot{Err: err}
	}
	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.task())
	}
	return backend.Snapshot{Tasks: tasks}
}
