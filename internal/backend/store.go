// Package backend keeps a session's task list in sync with either the local
// store (anonymous users) or the remote document store (signed-in users)
// behind one mutation API.
package backend

import (
	"context"

	"taskflow/internal/model"
)

// LocalStore is synchronous key/value persistence. Reads of missing or
// unreadable keys report ok=false.
type LocalStore interface {
	Read(key string) (string, bool)
	Write(key, value string)
}

// Snapshot is one delivery of a subscription: the owner's full task list,
// newest first, or the error that ended the stream.
type Snapshot struct {
	Tasks []model.Task
	Err   error
}

// Subscription is a cancelable stream of snapshots. The channel is closed
// after Cancel or after a snapshot carrying an error.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Cancel()
}

// RemoteStore is a per-owner, eventually consistent task collection. The
// store assigns ids on create.
type RemoteStore interface {
	Subscribe(ctx context.Context, ownerID string) (Subscription, error)
	Create(ctx context.Context, ownerID string, task model.Task) error
	Update(ctx context.Context, ownerID, id string, patch model.Patch) error
	Delete(ctx context.Context, ownerID, id string) error
	BatchCreate(ctx context.Context, ownerID string, tasks []model.Task) error
}
