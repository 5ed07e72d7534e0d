package main

import (
	"context"
	"fmt"

	"github.com/ssibachir/offer-crm/internal/config"
	"github.com/ssibachir/offer-crm/internal/store"
	"github.com/ssibachir/offer-crm/internal/store/airtable"
	"github.com/ssibachir/offer-crm/internal/store/notion"
	"github.com/ssibachir/offer-crm/internal/store/sqlite"
)

// openTable builds the store for the configured backend. The returned close
// func is never nil.
func openTable(ctx context.Context, cfg *config.Config) (store.Table, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "airtable":
		t, err := airtable.New(cfg.Airtable.APIKey, cfg.Airtable.BaseID, cfg.Airtable.TableName)
		if err != nil {
			return nil, nil, err
		}
		return t, noop, nil
	case "notion":
		return notion.New(cfg.Notion.Token, cfg.Notion.DatabaseID), noop, nil
	case "sqlite":
		t, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	default:
		return nil, nil, &config.ConfigurationError{Invalid: []string{"backend=" + cfg.Backend}, Err: fmt.Errorf("unsupported backend")}
	}
}
