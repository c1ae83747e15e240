package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"taskflow/internal/backend"
	"taskflow/internal/config"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

const (
	readyTimeout = 5 * time.Second
	opTimeout    = 15 * time.Second
)

// remoteStore is a remote task store that can also list an owner's tasks
// outside a subscription.
type remoteStore interface {
	backend.RemoteStore
	service.TaskLister
}

// app is the wiring shared by every command: configuration, the local
// database and the remote store.
type app struct {
	cfg    config.Config
	db     *gorm.DB
	pool   *pgxpool.Pool
	local  *repository.KVStore
	remote remoteStore
	tasks  *service.TaskService

	closers []func()
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{
		cfg:   cfg,
		db:    db,
		local: repository.NewKVStore(db),
		tasks: service.NewTaskService(clock(cfg.Location)),
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	if cfg.UsesPostgres() {
		pool, err := repository.Connect(ctx, cfg.RemoteURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.pool = pool
		a.closers = append(a.closers, pool.Close)
		pg := repository.NewPgDocumentStore(pool)
		a.closers = append(a.closers, pg.Close)
		if err := pg.EnsureTable(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.remote = pg
	} else {
		docs := repository.NewDocumentStore(db)
		a.closers = append(a.closers, docs.Close)
		a.remote = docs
	}
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) manager(opts ...backend.ManagerOption) *backend.Manager {
	opts = append([]backend.ManagerOption{backend.WithLocalKey(a.cfg.LocalKey)}, opts...)
	return backend.NewManager(a.local, a.remote, opts...)
}

// session opens the task session for the --user flag and waits for its
// first list.
func (a *app) session(ctx context.Context) (*backend.Session, error) {
	m := a.manager()
	ident := identity(userID)
	sess, err := m.SessionChanged(ctx, &ident)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	a.closers = append(a.closers, m.Close)

	waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := sess.WaitReady(waitCtx); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return sess, nil
}

func (a *app) now() time.Time {
	return a.tasks.Now()
}

// identity maps the --user flag to a session identity. No user means an
// anonymous local list.
func identity(user string) backend.Identity {
	return backend.Identity{UserID: user, Anonymous: user == ""}
}

func clock(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// wait blocks until op resolves or the command timeout passes.
func wait(ctx context.Context, op *backend.Op) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return op.Wait(ctx)
}

// withApp runs fn with an opened app and session.
func withApp(ctx context.Context, fn func(a *app, sess *backend.Session) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	return fn(a, sess)
}
