// Package notion implements store.Table over a Notion database.
//
// Each page of the database is one record. Cells are flattened to plain Go
// values (string, float64, time.Time) on read; on write the database schema
// decides which property shape a value is sent as.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	gnt "github.com/dstotijn/go-notion"

	"github.com/ssibachir/offer-crm/internal/store"
)

const queryPageSize = 100

// Client is a store.Table backed by one Notion database.
type Client struct {
	api        *gnt.Client
	databaseID string

	mu     sync.Mutex
	schema map[string]gnt.DatabasePropertyType
}

// New returns a client for databaseID. Extra go-notion options (for example
// gnt.WithHTTPClient) are passed through.
func New(token, databaseID string, opts ...gnt.ClientOption) *Client {
	return &Client{
		api:        gnt.NewClient(token, opts...),
		databaseID: databaseID,
	}
}

var _ store.Table = (*Client)(nil)

// Ping runs a one-row query, which fails fast on a bad token or id.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.QueryDatabase(ctx, c.databaseID, &gnt.DatabaseQuery{PageSize: 1})
	return wrap("notion ping", "", err)
}

// List queries every page of the database.
func (c *Client) List(ctx context.Context) ([]store.Row, error) {
	var rows []store.Row
	query := &gnt.DatabaseQuery{PageSize: queryPageSize}
	for {
		resp, err := c.api.QueryDatabase(ctx, c.databaseID, query)
		if err != nil {
			return nil, wrap("notion list", "", err)
		}
		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			props, _ := page.Properties.(gnt.DatabasePageProperties)
			rows = append(rows, store.Row{ID: page.ID, Fields: Flatten(props)})
		}
		if !resp.HasMore || resp.NextCursor == nil {
			return rows, nil
		}
		query.StartCursor = *resp.NextCursor
	}
}

// Update writes the given cells. Columns missing from the database schema
// are an error rather than being dropped.
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) error {
	schema, err := c.loadSchema(ctx)
	if err != nil {
		return err
	}
	props, err := Build(schema, fields)
	if err != nil {
		return fmt.Errorf("notion update %s: %w", id, err)
	}
	_, err = c.api.UpdatePage(ctx, id, gnt.UpdatePageParams{DatabasePageProperties: props})
	return wrap("notion update", id, err)
}

// Delete archives the page, which is how Notion removes database rows.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.api.DeleteBlock(ctx, id)
	return wrap("notion delete", id, err)
}

func (c *Client) loadSchema(ctx context.Context) (map[string]gnt.DatabasePropertyType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema != nil {
		return c.schema, nil
	}
	db, err := c.api.FindDatabaseByID(ctx, c.databaseID)
	if err != nil {
		return nil, wrap("notion schema", "", err)
	}
	schema := make(map[string]gnt.DatabasePropertyType, len(db.Properties))
	for name, p := range db.Properties {
		schema[name] = p.Type
	}
	c.schema = schema
	return schema, nil
}

// wrap maps go-notion errors onto the store taxonomy.
func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *gnt.APIError
	if id != "" && errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusNotFound || apiErr.Code == "object_not_found") {
		return &store.NotFoundError{ID: id}
	}
	return &store.ConnectionError{Op: op, Err: err}
}
