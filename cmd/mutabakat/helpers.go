package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ofisler/mutabakat/internal/config"
	"github.com/ofisler/mutabakat/internal/recon"
	"github.com/ofisler/mutabakat/internal/storage"
)

// initStorage opens the database and applies outstanding migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/mutabakat/mutabakat.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initService opens storage and wraps it in the reconciliation service.
// The caller closes the returned storage.
func initService(ctx context.Context) (*recon.Service, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return recon.New(store), store, nil
}
