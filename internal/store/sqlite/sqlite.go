// Package sqlite implements store.Table over a local SQLite file, for running
// the dashboard against a self-hosted table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ssibachir/offer-crm/internal/store"
)

// Table stores each record as a JSON object of cells keyed by column name.
type Table struct {
	db *sql.DB
}

var _ store.Table = (*Table)(nil)

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	t := &Table{db: db}
	if err := t.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return t, nil
}

// Migrate creates the records table.
func (t *Table) Migrate(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	fields TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`)
	if err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (t *Table) Close() error { return t.db.Close() }

// Insert adds a record. The dashboard never creates records; this is for
// seeding and imports.
func (t *Table) Insert(ctx context.Context, id string, fields map[string]any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if _, err := t.db.ExecContext(ctx, `INSERT INTO records (id, fields) VALUES (?, ?)`, id, string(b)); err != nil {
		return &store.ConnectionError{Op: "sqlite insert", Err: err}
	}
	return nil
}

// List returns every record in insertion order.
func (t *Table) List(ctx context.Context) ([]store.Row, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT id, fields FROM records ORDER BY created_at, rowid`)
	if err != nil {
		return nil, &store.ConnectionError{Op: "sqlite list", Err: err}
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, &store.ConnectionError{Op: "sqlite list", Err: err}
		}
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, &store.ConnectionError{Op: "sqlite list", Err: fmt.Errorf("record %s: %w", id, err)}
		}
		out = append(out, store.Row{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, &store.ConnectionError{Op: "sqlite list", Err: err}
	}
	return out, nil
}

// Update merges the given cells into the record. A nil value removes the
// cell.
func (t *Table) Update(ctx context.Context, id string, fields map[string]any) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return &store.ConnectionError{Op: "sqlite update", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT fields FROM records WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &store.NotFoundError{ID: id}
	}
	if err != nil {
		return &store.ConnectionError{Op: "sqlite update", Err: err}
	}

	current := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return &store.ConnectionError{Op: "sqlite update", Err: fmt.Errorf("record %s: %w", id, err)}
	}
	for k, v := range fields {
		if v == nil {
			delete(current, k)
			continue
		}
		current[k] = v
	}
	b, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE records SET fields = ?, updated_at = ? WHERE id = ?`,
		string(b), time.Now().UTC(), id); err != nil {
		return &store.ConnectionError{Op: "sqlite update", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &store.ConnectionError{Op: "sqlite update", Err: err}
	}
	return nil
}

// Delete removes the record.
func (t *Table) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return &store.ConnectionError{Op: "sqlite delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &store.ConnectionError{Op: "sqlite delete", Err: err}
	}
	if n == 0 {
		return &store.NotFoundError{ID: id}
	}
	return nil
}

// Ping checks the database handle.
func (t *Table) Ping(ctx context.Context) error {
	if err := t.db.PingContext(ctx); err != nil {
		return &store.ConnectionError{Op: "sqlite ping", Err: err}
	}
	return nil
}
