package backend

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Operation names used in OpError.
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpBatch     = "batch"
	OpSubscribe = "subscribe"
)

// OpError is a failed backend request.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	var what string
	switch e.Op {
	case OpCreate:
		what = "failed to save task"
	case OpUpdate:
		what = "failed to update task"
	case OpDelete:
		what = "failed to delete task"
	case OpBatch:
		what = "batch import failed"
	case OpSubscribe:
		what = "sync error, changes may not persist"
	default:
		what = e.Op + " failed"
	}
	return fmt.Sprintf("%s: %v", what, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Op is a pending mutation. Local operations are complete on return;
// remote ones resolve when the store answers.
type Op struct {
	name string
	done chan struct{}
	err  error
}

func newOp(name string) *Op {
	return &Op{name: name, done: make(chan struct{})}
}

func resolvedOp(name string, err error) *Op {
	op := newOp(name)
	op.finish(err)
	return op
}

func (o *Op) finish(err error) {
	if err != nil {
		err = &OpError{Op: o.name, Err: err}
	}
	o.err = err
	close(o.done)
}

func (o *Op) Name() string {
	return o.name
}

// Done is closed once the operation has resolved.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Err is the outcome; nil until Done is closed.
func (o *Op) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the operation resolves or ctx ends. Abandoning the wait
// doesn't cancel the request.
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Indicator is the "sync in progress" flag, asserted while at least one
// remote request is outstanding.
type Indicator struct {
	pending atomic.Int64
}

func (i *Indicator) begin() {
	i.pending.Add(1)
}

func (i *Indicator) end() {
	i.pending.Add(-1)
}

// Busy reports whether any remote request is in flight.
func (i *Indicator) Busy() bool {
	return i.pending.Load() > 0
}
