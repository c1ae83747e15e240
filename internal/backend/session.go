package backend

import (
	"context"
	"errors"
	"sync"

	"taskflow/internal/model"
)

var (
	ErrSessionClosed     = errors.New("session closed")
	ErrRemoteUnavailable = errors.New("remote store not configured")
)

// Mode selects where a session's tasks live. It is fixed for the session.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// Identity is what the identity provider knows about the current user.
type Identity struct {
	UserID    string
	Anonymous bool
}

func (i Identity) Mode() Mode {
	if i.Anonymous {
		return ModeLocal
	}
	return ModeRemote
}

// Sink receives list replacements and failures from a backend.
type Sink interface {
	Replace(tasks []model.Task)
	Fail(err error)
}

// Backend is the mutation contract shared by the local and remote paths.
type Backend interface {
	Mode() Mode
	// Open loads or subscribes and starts feeding sink.
	Open(ctx context.Context, sink Sink) error
	// Close stops feeding the sink. In-flight remote writes still complete.
	Close()
	Create(ctx context.Context, task model.Task) *Op
	Update(ctx context.Context, id string, patch model.Patch) *Op
	Delete(ctx context.Context, id string) *Op
	BatchCreate(ctx context.Context, tasks []model.Task) *Op
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnChange registers a callback run after every list replacement.
func WithOnChange(fn func(tasks []model.Task)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithOnError registers a callback for subscription failures.
func WithOnError(fn func(err error)) SessionOption {
	return func(s *Session) {
		s.onError = fn
	}
}

// Session owns one user's in-memory task list for as long as that user is
// signed in with one identity. The list is only ever replaced wholesale.
type Session struct {
	identity Identity
	backend  Backend
	onChange func([]model.Task)
	onError  func(error)

	mu        sync.RWMutex
	tasks     []model.Task
	lastErr   error
	closed    bool
	ready     chan struct{}
	readyOnce sync.Once
}

// NewSession binds identity to backend. Call Open before use.
func NewSession(identity Identity, backend Backend, opts ...SessionOption) *Session {
	s := &Session{
		identity: identity,
		backend:  backend,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the initial list (local) or starts the subscription (remote).
func (s *Session) Open(ctx context.Context) error {
	return s.backend.Open(ctx, s)
}

func (s *Session) Identity() Identity {
	return s.identity
}

func (s *Session) Mode() Mode {
	return s.backend.Mode()
}

// Replace swaps in a new list. Deliveries after Close are ignored.
func (s *Session) Replace(tasks []model.Task) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.tasks = model.CloneTasks(tasks)
	s.lastErr = nil
	onChange := s.onChange
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	if onChange != nil {
		onChange(model.CloneTasks(tasks))
	}
}

// Fail records a subscription failure. The current list is kept.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastErr = err
	onError := s.onError
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	if onError != nil {
		onError(err)
	}
}

// Ready is closed once the first list (or the first failure) has arrived.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until Ready or ctx ends.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is the last subscription failure, cleared by the next delivery.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Tasks returns a copy of the current list.
func (s *Session) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneTasks(s.tasks)
}

// Find looks a task up in the current list.
func (s *Session) Find(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close tears the session down: the subscription ends and the in-memory
// list is discarded. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.tasks = nil
	s.mu.Unlock()

	s.backend.Close()
}

func (s *Session) Create(ctx context.Context, task model.Task) *Op {
	if s.Closed() {
		return resolvedOp(OpCreate, ErrSessionClosed)
	}
	return s.backend.Create(ctx, task)
}

func (s *Session) Update(ctx context.Context, id string, patch model.Patch) *Op {
	if s.Closed() {
		return resolvedOp(OpUpdate, ErrSessionClosed)
	}
	return s.backend.Update(ctx, id, patch)
}

func (s *Session) Delete(ctx context.Context, id string) *Op {
	if s.Closed() {
		return resolvedOp(OpDelete, ErrSessionClosed)
	}
	return s.backend.Delete(ctx, id)
}

func (s *Session) BatchCreate(ctx context.Context, tasks []model.Task) *Op {
	if s.Closed() {
		return resolvedOp(OpBatch, ErrSessionClosed)
	}
	return s.backend.BatchCreate(ctx, tasks)
}
