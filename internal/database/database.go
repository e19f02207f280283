// Package database provides the arrangement store backends: an in-memory
// slice, a JSON file, SQLite and PostgreSQL. Every backend keeps the whole
// collection as one JSON array under a single key, so a save is always one
// atomic write.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/colarrange/internal/config"
	"github.com/JonMunkholm/colarrange/internal/core"
)

// Store is an arrangement store that may hold resources.
type Store interface {
	core.ArrangementStore
	Close() error
}

// Open builds the store selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	key := cfg.Storage.Key

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		slog.Info("using in-memory arrangement store")
		return NewMemoryStore(), nil

	case config.BackendFile:
		s, err := NewFileStore(cfg.Storage.Dir, key)
		if err != nil {
			return nil, err
		}
		slog.Info("using file arrangement store", "path", s.Path())
		return s, nil

	case config.BackendSQLite:
		s, err := NewSQLiteStore(ctx, cfg.Storage.SQLitePath, key)
		if err != nil {
			return nil, err
		}
		slog.Info("using sqlite arrangement store", "path", cfg.Storage.SQLitePath)
		return s, nil

	case config.BackendPostgres:
		s, err := NewPostgresStore(ctx, cfg.Database, key)
		if err != nil {
			return nil, err
		}
		slog.Info("using postgres arrangement store")
		return s, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// encode renders the collection in its stored form. A nil collection is
// written as an empty array.
func encode(arrs []core.Arrangement) ([]byte, error) {
	if arrs == nil {
		arrs = []core.Arrangement{}
	}
	data, err := json.Marshal(arrs)
	if err != nil {
		return nil, fmt.Errorf("encode arrangements: %w", err)
	}
	return data, nil
}

// decode parses a stored collection. Empty input means nothing was saved.
func decode(data []byte) ([]core.Arrangement, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var arrs []core.Arrangement
	if err := json.Unmarshal(data, &arrs); err != nil {
		return nil, fmt.Errorf("decode arrangements: %w", err)
	}
	return arrs, nil
}
