package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/platform/database"
	"bookstore/internal/platform/logging"

	"github.com/alecthomas/kong"
)

//go:embed books.json
var sampleBooks []byte

// CLI is the seed command line.
type CLI struct {
	DSN     string `help:"Database connection string (postgres URL or sqlite:<path>)." env:"DB_DSN" default:"${default_dsn}"`
	File    string `short:"f" help:"JSON array of books to load instead of the bundled sample." type:"existingfile"`
	Migrate bool   `help:"Apply pending migrations before seeding."`
}

// Run loads the books and inserts the ones not already stored.
func (c *CLI) Run(ctx context.Context, logger *slog.Logger) error {
	data := sampleBooks
	if c.File != "" {
		b, err := os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("read %s: %w", c.File, err)
		}
		data = b
	}

	books, err := decodeBooks(data)
	if err != nil {
		return err
	}

	store, err := database.Open(ctx, c.DSN, 5*time.Second)
	if err != nil {
		return err
	}
	defer store.Close()

	if c.Migrate {
		if _, err := database.MigrateUp(ctx, store); err != nil {
			return err
		}
	}

	inserted, skipped, err := seed(ctx, book.NewService(store.Books, logger), books)
	if err != nil {
		return err
	}
	logger.Info("seed finished", "inserted", inserted, "skipped", skipped)
	return nil
}

// decodeBooks validates every record against the book schema.
func decodeBooks(data []byte) ([]book.Book, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("seed data must be a JSON array: %w", err)
	}

	var (
		books []book.Book
		errs  []error
	)
	for i, r := range raw {
		b, err := book.Validate(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		books = append(books, b)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return books, nil
}

func seed(ctx context.Context, svc *book.Service, books []book.Book) (inserted, skipped int, err error) {
	for _, b := range books {
		_, err := svc.GetByISBN(ctx, b.ISBN)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, book.ErrNotFound):
			return inserted, skipped, err
		}
		if _, err := svc.Create(ctx, b); err != nil {
			return inserted, skipped, err
		}
		inserted++
	}
	return inserted, skipped, nil
}

func main() {
	config.LoadEnvFiles()

	logger, err := logging.New(os.Stderr, slog.LevelInfo, logging.FormatText)
	if err != nil {
		panic(err)
	}
	slog.SetDefault(logger)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Load sample books into the bookstore database."),
		kong.UsageOnError(),
		kong.Vars{"default_dsn": config.DefaultDSN},
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Bind(logger),
	)

	if err := kctx.Run(); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
