package bot

import (
	"context"
	"strconv"
	"sync"
	"time"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

// readyTimeout bounds the wait for a new remote session's first snapshot.
const readyTimeout = 5 * time.Second

// Sessions is the bot's identity provider. Every Telegram user gets one
// backend.Manager; a user who hasn't signed in is anonymous and keeps tasks
// in the local store, a signed-in user syncs with the remote store.
type Sessions struct {
	local  backend.LocalStore
	remote backend.RemoteStore
	opts   []backend.ManagerOption

	mu       sync.Mutex
	managers map[int64]*backend.Manager
}

func NewSessions(local backend.LocalStore, remote backend.RemoteStore, opts ...backend.ManagerOption) *Sessions {
	return &Sessions{
		local:    local,
		remote:   remote,
		opts:     opts,
		managers: make(map[int64]*backend.Manager),
	}
}

// IdentityOf maps a stored user to the identity their session runs under.
func IdentityOf(u model.User) backend.Identity {
	return backend.Identity{
		UserID:    strconv.FormatInt(u.TelegramID, 10),
		Anonymous: !u.SignedIn,
	}
}

// For returns the user's live session, opening one when there is none or
// when the user's mode changed since it was opened.
func (s *Sessions) For(ctx context.Context, u model.User) (*backend.Session, error) {
	m := s.manager(u.TelegramID)
	ident := IdentityOf(u)
	if cur := m.Current(); cur != nil && cur.Identity() == ident {
		return cur, nil
	}
	return s.open(ctx, m, ident)
}

// Switch tears down the user's current session and opens one for u's
// current mode.
func (s *Sessions) Switch(ctx context.Context, u model.User) (*backend.Session, error) {
	return s.open(ctx, s.manager(u.TelegramID), IdentityOf(u))
}

func (s *Sessions) open(ctx context.Context, m *backend.Manager, ident backend.Identity) (*backend.Session, error) {
	sess, err := m.SessionChanged(ctx, &ident)
	if err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := sess.WaitReady(waitCtx); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return sess, nil
}

// Syncing reports whether the user has remote requests in flight.
func (s *Sessions) Syncing(telegramID int64) bool {
	s.mu.Lock()
	m, ok := s.managers[telegramID]
	s.mu.Unlock()
	return ok && m.Syncing()
}

// Close ends every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.managers {
		m.Close()
		delete(s.managers, id)
	}
}

func (s *Sessions) manager(telegramID int64) *backend.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.managers[telegramID]
	if !ok {
		m = backend.NewManager(s.local, s.remote, s.opts...)
		s.managers[telegramID] = m
	}
	return m
}
