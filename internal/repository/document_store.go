package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

// ErrDocumentNotFound is returned when an update names a missing task.
var ErrDocumentNotFound = errors.New("task document not found")

// DefaultPollInterval is how often a DocumentStore checks the database for
// commits made by other processes.
const DefaultPollInterval = time.Second

// DocumentStore is the remote task store backed by the application
// database. Ids are generated by the store, and every committed write
// pushes the owner's full list to their subscribers. Writes made through
// another process sharing the database file reach subscribers on the next
// poll.
type DocumentStore struct {
	db   *gorm.DB
	hub  *snapshotHub
	poll time.Duration

	stop      context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

type DocumentStoreOption func(*DocumentStore)

// WithPollInterval sets how often the store looks for outside commits.
// Zero turns polling off.
func WithPollInterval(d time.Duration) DocumentStoreOption {
	return func(s *DocumentStore) {
		s.poll = d
	}
}

func NewDocumentStore(db *gorm.DB, opts ...DocumentStoreOption) *DocumentStore {
	s := &DocumentStore{db: db, hub: newSnapshotHub(), poll: DefaultPollInterval}
	for _, opt := range opts {
		opt(s)
	}
	if s.poll > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.stop = cancel
		s.done = make(chan struct{})
		go s.watch(ctx)
	}
	return s
}

// Subscribe streams ownerID's tasks, newest first. The first snapshot is
// the current list.
func (s *DocumentStore) Subscribe(ctx context.Context, ownerID string) (backend.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.hub.subscribe(ownerID, s.loader(ownerID)), nil
}

// List returns ownerID's tasks, newest first.
func (s *DocumentStore) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	docs, err := s.list(s.db.WithContext(ctx), ownerID)
	if err != nil {
		return nil, err
	}
	return snapshotOf(docs, nil).Tasks, nil
}

func (s *DocumentStore) Create(ctx context.Context, ownerID string, task model.Task) error {
	doc := documentOf(ownerID, uuid.NewString(), task)
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	s.hub.publish(ownerID, s.loader(ownerID))
	return nil
}

// Update applies patch to one document. Unlike Delete it fails when the
// document doesn't exist.
func (s *DocumentStore) Update(ctx context.Context, ownerID, id string, patch model.Patch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&taskDocument{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update task %s: %w", id, ErrDocumentNotFound)
	}
	s.hub.publish(ownerID, s.loader(ownerID))
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, ownerID, id string) error {
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&taskDocument{}).Error
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	s.hub.publish(ownerID, s.loader(ownerID))
	return nil
}

// BatchCreate writes all tasks in one transaction. Subscribers see a single
// snapshot with every new task.
func (s *DocumentStore) BatchCreate(ctx context.Context, ownerID string, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	docs := make([]taskDocument, 0, len(tasks))
	for _, t := range tasks {
		docs = append(docs, documentOf(ownerID, uuid.NewString(), t))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(docs, 100).Error
	})
	if err != nil {
		return fmt.Errorf("batch create tasks: %w", err)
	}
	s.hub.publish(ownerID, s.loader(ownerID))
	return nil
}

// Close stops polling and ends every open subscription.
func (s *DocumentStore) Close() {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			s.stop()
			<-s.done
		}
		s.hub.close()
	})
}

// watch republishes every subscribed owner when PRAGMA data_version moves.
// The pragma only changes for commits from other connections, so it is read
// on one connection held for the watcher's lifetime.
func (s *DocumentStore) watch(ctx context.Context) {
	defer close(s.done)

	sqlDB, err := s.db.DB()
	if err != nil {
		log.Printf("[warn] document watcher: %v", err)
		return
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[warn] document watcher: acquire connection: %v", err)
		}
		return
	}
	defer conn.Close()

	version := func() (int64, error) {
		var v int64
		err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
		return v, err
	}
	last, err := version()
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[warn] document watcher: read data_version: %v", err)
		}
		return
	}

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		v, err := version()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[warn] document watcher: read data_version: %v", err)
			continue
		}
		if v == last {
			continue
		}
		last = v
		for _, owner := range s.hub.owners() {
			s.hub.publish(owner, s.loader(owner))
		}
	}
}

func (s *DocumentStore) loader(ownerID string) func() ([]taskDocument, error) {
	return func() ([]taskDocument, error) {
		return s.list(s.db, ownerID)
	}
}

func (s *DocumentStore) list(db *gorm.DB, ownerID string) ([]taskDocument, error) {
	var docs []taskDocument
	err := db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return docs, nil
}
