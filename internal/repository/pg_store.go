package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

// notifyChannel carries the owner id of every changed collection.
const notifyChannel = "taskflow_tasks"

// loadTimeout bounds the list query behind each published snapshot.
const loadTimeout = 10 * time.Second

// ErrStoreClosed is returned by Subscribe after Close.
var ErrStoreClosed = errors.New("task store closed")

// PgDocumentStore is the remote task store on PostgreSQL. Writes notify
// notifyChannel in the same transaction. One listener connection, opened
// outside the pool on the first Subscribe, fans notifications out to every
// subscription, so clients on other hosts see each other's changes.
type PgDocumentStore struct {
	pool *pgxpool.Pool
	hub  *snapshotHub

	mu       sync.Mutex
	listener *pgListener
	closed   bool
}

type pgListener struct {
	conn   *pgx.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPgDocumentStore(pool *pgxpool.Pool) *PgDocumentStore {
	return &PgDocumentStore{pool: pool, hub: newSnapshotHub()}
}

// EnsureTable creates the task_documents table if it doesn't exist.
func (s *PgDocumentStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS task_documents (
			id             TEXT PRIMARY KEY,
			owner_id       TEXT NOT NULL,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			priority       TEXT NOT NULL DEFAULT 'medium',
			status         TEXT NOT NULL DEFAULT 'todo',
			target_date    TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			is_recurring   BOOLEAN NOT NULL DEFAULT FALSE,
			recurring_freq TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at   TIMESTAMPTZ
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_task_documents_owner ON task_documents(owner_id, created_at DESC)`)
	return err
}

// Subscribe streams ownerID's tasks, newest first. The first snapshot is
// read after LISTEN so no write falls between.
func (s *PgDocumentStore) Subscribe(ctx context.Context, ownerID string) (backend.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.listener == nil {
		l, err := s.startListener(ctx)
		if err != nil {
			return nil, err
		}
		s.listener = l
	}
	return s.hub.subscribe(ownerID, s.loader(ownerID)), nil
}

// startListener opens the notification connection with the pool's
// settings. s.mu must be held.
func (s *PgDocumentStore) startListener(ctx context.Context) (*pgListener, error) {
	conn, err := pgx.ConnectConfig(ctx, s.pool.Config().ConnConfig.Copy())
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen: %w", err)
	}
	listenCtx, cancel := context.WithCancel(context.Background())
	l := &pgListener{conn: conn, cancel: cancel, done: make(chan struct{})}
	go s.listen(listenCtx, l)
	return l, nil
}

// listen republishes the owner named by each notification. When the
// connection fails every subscription gets the error and the next
// Subscribe opens a fresh listener.
func (s *PgDocumentStore) listen(ctx context.Context, l *pgListener) {
	defer close(l.done)
	defer l.conn.Close(context.Background())

	for {
		n, err := l.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[warn] task notifications: %v", err)
			s.mu.Lock()
			if s.listener == l {
				s.listener = nil
			}
			s.hub.fail(fmt.Errorf("task notifications: %w", err))
			s.mu.Unlock()
			return
		}
		s.hub.publish(n.Payload, s.loader(n.Payload))
	}
}

// Close stops the listener and ends every open subscription.
func (s *PgDocumentStore) Close() {
	s.mu.Lock()
	l := s.listener
	s.listener = nil
	s.closed = true
	s.mu.Unlock()

	if l != nil {
		l.cancel()
		<-l.done
	}
	s.hub.close()
}

func (s *PgDocumentStore) loader(ownerID string) func() ([]taskDocument, error) {
	return func() ([]taskDocument, error) {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return s.list(ctx, s.pool, ownerID)
	}
}

// List returns ownerID's tasks, newest first.
func (s *PgDocumentStore) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	docs, err := s.list(ctx, s.pool, ownerID)
	if err != nil {
		return nil, err
	}
	return snapshotOf(docs, nil).Tasks, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *PgDocumentStore) list(ctx context.Context, q querier, ownerID string) ([]taskDocument, error) {
	rows, err := q.Query(ctx, `
		SELECT id, owner_id, title, description, priority, status, target_date, category, is_recurring, recurring_freq, created_at, completed_at
		FROM task_documents WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var docs []taskDocument
	for rows.Next() {
		var d taskDocument
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Description, &d.Priority, &d.Status, &d.TargetDate, &d.Category, &d.IsRecurring, &d.RecurringFreq, &d.CreatedAt, &d.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return docs, nil
}

func (s *PgDocumentStore) Create(ctx context.Context, ownerID string, task model.Task) error {
	return s.write(ctx, ownerID, "create task", func(tx pgx.Tx) error {
		return insertDocument(ctx, tx, documentOf(ownerID, uuid.NewString(), task))
	})
}

func (s *PgDocumentStore) Update(ctx context.Context, ownerID, id string, patch model.Patch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	query, args := updateQuery(ownerID, id, cols)
	return s.write(ctx, ownerID, "update task "+id, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrDocumentNotFound
		}
		return nil
	})
}

func (s *PgDocumentStore) Delete(ctx context.Context, ownerID, id string) error {
	return s.write(ctx, ownerID, "delete task "+id, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM task_documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
		return err
	})
}

func (s *PgDocumentStore) BatchCreate(ctx context.Context, ownerID string, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return s.write(ctx, ownerID, "batch create tasks", func(tx pgx.Tx) error {
		for _, t := range tasks {
			if err := insertDocument(ctx, tx, documentOf(ownerID, uuid.NewString(), t)); err != nil {
				return err
			}
		}
		return nil
	})
}

// write runs fn and the owner's notification in one transaction.
func (s *PgDocumentStore) write(ctx context.Context, ownerID, what string, fn func(pgx.Tx) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, ownerID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func insertDocument(ctx context.Context, tx pgx.Tx, d taskDocument) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO task_documents (id, owner_id, title, description, priority, status, target_date, category, is_recurring, recurring_freq, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.OwnerID, d.Title, d.Description, d.Priority, d.Status, d.TargetDate, d.Category, d.IsRecurring, d.RecurringFreq, d.CreatedAt, d.CompletedAt)
	return err
}

// patchColumns is the fixed column order of updateQuery.
var patchColumns = []string{"title", "description", "priority", "status", "target_date", "category", "is_recurring", "recurring_freq", "completed_at"}

func updateQuery(ownerID, id string, cols map[string]any) (string, []any) {
	var set string
	var args []any
	for _, col := range patchColumns {
		v, ok := cols[col]
		if !ok {
			continue
		}
		if set != "" {
			set += ", "
		}
		args = append(args, v)
		set += fmt.Sprintf("%s = $%d", col, len(args))
	}
	args = append(args, id, ownerID)
	query := fmt.Sprintf("UPDATE task_documents SET %s WHERE id = $%d AND owner_id = $%d", set, len(args)-1, len(args))
	return query, args
}

// Connect opens a pgx pool for url.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
