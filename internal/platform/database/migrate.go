package database

import (
	"context"
	"fmt"

	"bookstore/db/migrations"

	"github.com/pressly/goose/v3"
)

// NewMigrator returns a goose provider bound to the store's database and the
// embedded migrations.
func NewMigrator(s *Store) (*goose.Provider, error) {
	provider, err := goose.NewProvider(s.Dialect, s.DB, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, nil
}

// MigrateUp applies every pending migration and returns how many ran.
func MigrateUp(ctx context.Context, s *Store) (int, error) {
	provider, err := NewMigrator(s)
	if err != nil {
		return 0, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}
