package main

import (
	"context"
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/store"
)

// openStore builds the candidate store selected by c.Store. The returned
// close function releases any underlying connection.
func openStore(ctx context.Context, c config.Config) (store.CandidateStore, func() error, error) {
	noop := func() error { return nil }

	switch c.Store {
	case config.StoreAPI, "":
		var opts []store.APIOption
		if c.APIToken != "" {
			opts = append(opts, store.WithToken(c.APIToken))
		}
		return store.NewAPIStore(c.APIURL, opts...), noop, nil
	case config.StoreRepository:
		repo, err := db.Open(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open repository: %w", err)
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, fmt.Errorf("failed to migrate repository: %w", err)
		}
		return store.NewRepositoryStore(repo), repo.Close, nil
	case config.StoreWorkbook:
		return store.NewWorkbookStore(c.WorkbookPath), noop, nil
	case config.StoreSheets:
		s, err := store.NewSheetsStore(ctx, c.SheetsCredentials, c.SpreadsheetID)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", c.Store)
	}
}
