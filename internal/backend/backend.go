// Package backend selects and wires a storage backend from configuration.
package backend

import (
	"context"
	"fmt"

	"bilancio/internal/config"
	"bilancio/internal/postgres"
	"bilancio/internal/storage"
	"bilancio/internal/store"
	"bilancio/internal/store/memory"
)

type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, SQLite, Postgres}
}

// Open creates the store named by cfg.DataBackend. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		return repo, nil
	case Postgres:
		repo, err := postgres.NewRepository(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize Postgres repository: %w", err)
		}
		return repo, nil
	default:
		return memory.New(), nil
	}
}
