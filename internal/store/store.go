// Package store defines the contract every remote table backend satisfies and
// the errors they report.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Row is one remote record: an opaque id and its cells keyed by column name.
type Row struct {
	ID     string
	Fields map[string]any
}

// Table is a remote tabular store.
//
// Implementations report a missing record as *NotFoundError and any transport
// or server failure as *ConnectionError.
type Table interface {
	List(ctx context.Context) ([]Row, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Sentinels for errors.Is.
var (
	ErrNotFound   = errors.New("record not found")
	ErrConnection = errors.New("remote store unreachable")
)

// NotFoundError reports a mutation target that does not exist remotely.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %q not found", e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConnectionError reports a failed or timed-out remote call.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return e.Op + ": remote store unreachable"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is matches ErrConnection.
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConnection reports whether err is or wraps a ConnectionError.
func IsConnection(err error) bool { return errors.Is(err, ErrConnection) }

// WithTimeout bounds every call on t by d. A call that runs out of time, or
// fails for any reason other than a missing record, is reported as a
// *ConnectionError.
func WithTimeout(t Table, d time.Duration) Table {
	return &timeoutTable{next: t, timeout: d}
}

type timeoutTable struct {
	next    Table
	timeout time.Duration
}

func (t *timeoutTable) List(ctx context.Context) ([]Row, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	rows, err := t.next.List(ctx)
	return rows, classify(ctx, "list", err)
}

func (t *timeoutTable) Update(ctx context.Context, id string, fields map[string]any) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return classify(ctx, "update", t.next.Update(ctx, id, fields))
}

func (t *timeoutTable) Delete(ctx context.Context, id string) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return classify(ctx, "delete", t.next.Delete(ctx, id))
}

func (t *timeoutTable) Ping(ctx context.Context) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return classify(ctx, "ping", t.next.Ping(ctx))
}

func (t *timeoutTable) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsConnection(err) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ConnectionError{Op: op, Err: fmt.Errorf("%w: %w", ctxErr, err)}
	}
	return &ConnectionError{Op: op, Err: err}
}
