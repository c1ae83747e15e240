package backend

import (
	"context"
	"log"
	"sync"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLocalKey sets the local store key prefix.
func WithLocalKey(prefix string) ManagerOption {
	return func(m *Manager) {
		m.keyPrefix = prefix
	}
}

// WithLocalOptions passes options to every LocalBackend the manager builds.
func WithLocalOptions(opts ...LocalOption) ManagerOption {
	return func(m *Manager) {
		m.localOpts = append(m.localOpts, opts...)
	}
}

// WithSessionOptions passes options to every Session the manager opens.
func WithSessionOptions(opts ...SessionOption) ManagerOption {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// WithIndicator shares a sync indicator across managers.
func WithIndicator(ind *Indicator) ManagerOption {
	return func(m *Manager) {
		m.indicator = ind
	}
}

// Manager follows the identity provider: each identity change tears down the
// previous session before a new one is opened, so at most one session (and
// one subscription) is live at a time.
type Manager struct {
	local       LocalStore
	remote      RemoteStore
	indicator   *Indicator
	keyPrefix   string
	localOpts   []LocalOption
	sessionOpts []SessionOption

	mu      sync.Mutex
	current *Session
}

// NewManager builds a manager. remote may be nil when only anonymous
// sessions are used.
func NewManager(local LocalStore, remote RemoteStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		local:     local,
		remote:    remote,
		indicator: &Indicator{},
		keyPrefix: DefaultLocalKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LocalKey is the local store key for an identity. The user id keeps
// anonymous users sharing one store apart.
func (m *Manager) LocalKey(identity Identity) string {
	if identity.UserID == "" {
		return m.keyPrefix
	}
	return m.keyPrefix + ":" + identity.UserID
}

// Backend builds the backend for an identity's mode.
func (m *Manager) Backend(identity Identity) (Backend, error) {
	if identity.Mode() == ModeLocal {
		return NewLocalBackend(m.local, m.LocalKey(identity), m.localOpts...), nil
	}
	if m.remote == nil {
		return nil, ErrRemoteUnavailable
	}
	return NewRemoteBackend(m.remote, identity.UserID, m.indicator), nil
}

// SessionChanged handles an identity event. A nil identity signs out.
func (m *Manager) SessionChanged(ctx context.Context, identity *Identity) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
	if identity == nil {
		return nil, nil
	}

	b, err := m.Backend(*identity)
	if err != nil {
		return nil, err
	}
	s := NewSession(*identity, b, m.sessionOpts...)
	if err := s.Open(ctx); err != nil {
		s.Close()
		return nil, err
	}
	log.Printf("[info] session opened user=%q mode=%s", identity.UserID, s.Mode())
	m.current = s
	return s, nil
}

// Follow applies identity events until the channel closes or ctx ends.
func (m *Manager) Follow(ctx context.Context, events <-chan *Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case ident, ok := <-events:
			if !ok {
				return
			}
			if _, err := m.SessionChanged(ctx, ident); err != nil {
				log.Printf("[warn] open session: %v", err)
			}
		}
	}
}

// Current is the live session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Syncing reports whether a remote request is in flight.
func (m *Manager) Syncing() bool {
	return m.indicator.Busy()
}

// Close ends the current session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}
