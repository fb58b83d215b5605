// Package database opens the book store selected by a DSN and applies the
// embedded schema migrations to it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore/internal/book"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	goosedb "github.com/pressly/goose/v3/database"
	_ "modernc.org/sqlite"
)

const sqlitePrefix = "sqlite:"

// Store bundles the book repository with the handles needed to migrate and
// health-check the database behind it.
type Store struct {
	Books   book.Repository
	DB      *sql.DB
	Dialect goosedb.Dialect

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases every connection held by the store.
func (s *Store) Close() {
	s.close()
}

// IsSQLite reports whether dsn selects the embedded SQLite backend.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, sqlitePrefix)
}

// Open connects to the database named by dsn. Postgres URLs use a pgx pool;
// "sqlite:<path>" and "sqlite::memory:" use modernc.org/sqlite.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	if IsSQLite(dsn) {
		return openSQLite(ctx, strings.TrimPrefix(dsn, sqlitePrefix), timeout)
	}
	return openPostgres(ctx, dsn, timeout)
}

func openPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}

	db := stdlib.OpenDBFromPool(pool)
	return &Store{
		Books:   book.NewPostgresRepo(pool, timeout),
		DB:      db,
		Dialect: goosedb.DialectPostgres,
		ping:    pool.Ping,
		close: func() {
			_ = db.Close()
			pool.Close()
		},
	}, nil
}

func openSQLite(ctx context.Context, path string, timeout time.Duration) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite dsn has no path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite serialises writers, and every ":memory:" connection is a
	// separate database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return &Store{
		Books:   book.NewSQLiteRepo(db, timeout),
		DB:      db,
		Dialect: goosedb.DialectSQLite3,
		ping:    db.PingContext,
		close:   func() { _ = db.Close() },
	}, nil
}

// RedactDSN hides the credentials of a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
