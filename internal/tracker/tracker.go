// Package tracker reads job records from a remote table and applies
// mutations to them.
//
// Reads go through a SnapshotCache keyed by the tracker's Handle. Every
// successful mutation drops the snapshot, so the next FetchAll goes back to
// the remote store. Nothing is patched locally.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ssibachir/offer-crm/internal/store"
	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// Defaults for New.
const (
	DefaultTTL     = 60 * time.Second
	DefaultTimeout = 15 * time.Second
)

// ErrNoTransition is returned by Advance for records at the end of the
// pipeline.
var ErrNoTransition = errors.New("no forward transition")

// Tracker is the record store adapter and mutation gateway.
type Tracker struct {
	table   store.Table
	columns job.Columns
	cache   *SnapshotCache
	handle  Handle
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithColumns overrides the remote column names.
func WithColumns(c job.Columns) Option { return func(t *Tracker) { t.columns = c } }

// WithCache shares a cache between trackers, or injects one with a fixed
// clock in tests.
func WithCache(c *SnapshotCache) Option { return func(t *Tracker) { t.cache = c } }

// WithTimeout bounds every remote call.
func WithTimeout(d time.Duration) Option { return func(t *Tracker) { t.timeout = d } }

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option { return func(t *Tracker) { t.logger = l } }

// New returns a tracker over table.
func New(table store.Table, opts ...Option) *Tracker {
	t := &Tracker{
		columns: job.DefaultColumns(),
		handle:  NewHandle(),
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.cache == nil {
		t.cache = NewSnapshotCache(DefaultTTL, nil)
	}
	t.table = store.WithTimeout(table, t.timeout)
	t.logger = t.logger.With("component", "tracker")
	return t
}

// Handle identifies this tracker's snapshot.
func (t *Tracker) Handle() Handle { return t.handle }

// Ping checks that the remote table answers.
func (t *Tracker) Ping(ctx context.Context) error {
	if err := t.table.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// FetchAll returns the table, from the snapshot when it is fresh. The caller
// owns the returned slice.
func (t *Tracker) FetchAll(ctx context.Context) ([]job.Record, error) {
	if records, ok := t.cache.Get(t.handle); ok {
		if age, ok := t.SnapshotAge(); ok {
			t.logger.Debug("served snapshot", "op", "list", "count", len(records), "age_ms", age.Milliseconds())
		}
		return records, nil
	}
	return t.Refresh(ctx)
}

// SnapshotAge reports how long ago the cached table was fetched. It is false
// when there is no snapshot.
func (t *Tracker) SnapshotAge() (time.Duration, bool) { return t.cache.Age(t.handle) }

// Refresh fetches the table from the remote store and replaces the
// snapshot.
func (t *Tracker) Refresh(ctx context.Context) ([]job.Record, error) {
	start := time.Now()
	rows, err := t.table.List(ctx)
	if err != nil {
		t.logger.Error("fetch failed", "op", "list", "error", err)
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	records := make([]job.Record, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.ID]; dup {
			t.logger.Warn("duplicate record id ignored", "record_id", row.ID)
			continue
		}
		seen[row.ID] = struct{}{}
		records = append(records, job.Decode(row.ID, row.Fields, t.columns))
	}

	t.cache.Put(t.handle, records)
	t.logger.Debug("fetched records", "op", "list", "count", len(records),
		"duration_ms", time.Since(start).Milliseconds())
	return records, nil
}

// Invalidate drops the snapshot so the next FetchAll hits the remote store.
func (t *Tracker) Invalidate() { t.cache.Invalidate(t.handle) }

// Get returns one record from the current table.
func (t *Tracker) Get(ctx context.Context, id string) (job.Record, error) {
	records, err := t.FetchAll(ctx)
	if err != nil {
		return job.Record{}, err
	}
	r, ok := job.Find(records, id)
	if !ok {
		return job.Record{}, &store.NotFoundError{ID: id}
	}
	return r, nil
}

// Update writes changes to one record.
func (t *Tracker) Update(ctx context.Context, id string, changes job.Changes) error {
	fields, err := changes.Encode(t.columns)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	start := time.Now()
	if err := t.table.Update(ctx, id, fields); err != nil {
		t.logger.Error("update failed", "op", "update", "record_id", id, "fields", changes.Fields(), "error", err)
		return fmt.Errorf("update %s: %w", id, err)
	}
	t.Invalidate()
	t.logger.Info("record updated", "op", "update", "record_id", id, "fields", changes.Fields(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Delete removes one record.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.table.Delete(ctx, id); err != nil {
		t.logger.Error("delete failed", "op", "delete", "record_id", id, "error", err)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	t.Invalidate()
	t.logger.Info("record deleted", "op", "delete", "record_id", id)
	return nil
}

// SetStatus moves a record to s.
func (t *Tracker) SetStatus(ctx context.Context, id string, s status.Status) error {
	return t.Update(ctx, id, job.Changes{}.SetStatus(s))
}

// Advance moves a record one step along the pipeline and returns the new
// status.
func (t *Tracker) Advance(ctx context.Context, id string) (status.Status, error) {
	r, err := t.Get(ctx, id)
	if err != nil {
		return status.Status{}, err
	}
	next, ok := status.Next(r.Status)
	if !ok {
		return r.Status, fmt.Errorf("advance %s from %s: %w", id, r.Status, ErrNoTransition)
	}
	changes := job.Changes{}.SetStatus(next)
	if next == status.Applied && r.ApplicationDate == nil {
		today := time.Now()
		changes.SetDate(job.FieldApplicationDate, &today)
	}
	if err := t.Update(ctx, id, changes); err != nil {
		return r.Status, err
	}
	return next, nil
}

// Reject moves a record to Rejected.
func (t *Tracker) Reject(ctx context.Context, id string) error {
	return t.SetStatus(ctx, id, status.Rejected)
}

// MarkReady saves the cover letter and moves the record to Ready.
func (t *Tracker) MarkReady(ctx context.Context, id, coverLetter string) error {
	return t.Update(ctx, id, job.Changes{}.
		SetText(job.FieldCoverLetter, coverLetter).
		SetStatus(status.Ready))
}

// Details are the user-editable fields of the details page.
type Details struct {
	CoverLetter string
	Status      status.Status
	Contact     string
	FollowUp    string
}

// SaveDetails writes the editable fields in one call.
func (t *Tracker) SaveDetails(ctx context.Context, id string, d Details) error {
	return t.Update(ctx, id, job.Changes{}.
		SetText(job.FieldCoverLetter, d.CoverLetter).
		SetStatus(d.Status).
		SetText(job.FieldContact, d.Contact).
		SetText(job.FieldFollowUp, d.FollowUp))
}
