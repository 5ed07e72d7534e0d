// Package airtable implements store.Table over one Airtable table, using the
// mehanizm/airtable client for the REST calls.
package airtable

import (
	"context"
	"errors"
	"net/http"
	"strings"

	at "github.com/mehanizm/airtable"

	"github.com/ssibachir/offer-crm/internal/store"
)

// pageSize is the maximum the list endpoint accepts.
const pageSize = 100

// Client talks to one table of one base.
type Client struct {
	table *at.Table
}

// Option configures the underlying API client.
type Option func(*at.Client) error

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *at.Client) error { return c.SetBaseURL(u) }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *at.Client) error {
		c.SetCustomClient(h)
		return nil
	}
}

// New returns a client for baseID/table authenticated with apiKey.
func New(apiKey, baseID, table string, opts ...Option) (*Client, error) {
	api := at.NewClient(apiKey)
	for _, opt := range opts {
		if err := opt(api); err != nil {
			return nil, err
		}
	}
	return &Client{table: api.GetTable(baseID, table)}, nil
}

var _ store.Table = (*Client)(nil)

// List fetches every record, following offset pagination.
func (c *Client) List(ctx context.Context) ([]store.Row, error) {
	var rows []store.Row
	offset := ""
	for {
		q := c.table.GetRecords().PageSize(pageSize)
		if offset != "" {
			q = q.WithOffset(offset)
		}
		page, err := q.DoContext(ctx)
		if err != nil {
			return nil, wrap("list", "", err)
		}
		for _, r := range page.Records {
			rows = append(rows, store.Row{ID: r.ID, Fields: r.Fields})
		}
		if page.Offset == "" {
			return rows, nil
		}
		offset = page.Offset
	}
}

// Update patches the given cells. Typecast lets Airtable create missing
// single-select options such as a new status label.
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.table.UpdateRecordsPartialContext(ctx, &at.Records{
		Records:  []*at.Record{{ID: id, Fields: fields}},
		Typecast: true,
	})
	return wrap("update", id, err)
}

// Delete removes the record.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.table.DeleteRecordsContext(ctx, []string{id})
	return wrap("delete", id, err)
}

// Ping lists a single record.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.table.GetRecords().PageSize(1).DoContext(ctx)
	return wrap("ping", "", err)
}

// wrap maps client errors onto the store taxonomy. A 404 or
// ROW_DOES_NOT_EXIST on a call that names a record is a missing record; the
// same status on a table-level call means a bad base or table.
func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var httpErr *at.HTTPClientError
	if id != "" && errors.As(err, &httpErr) &&
		(httpErr.StatusCode == http.StatusNotFound || strings.Contains(httpErr.Error(), "ROW_DOES_NOT_EXIST")) {
		return &store.NotFoundError{ID: id}
	}
	return &store.ConnectionError{Op: "airtable " + op, Err: err}
}
