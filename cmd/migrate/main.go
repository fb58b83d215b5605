package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/platform/database"
	"bookstore/internal/platform/logging"

	"github.com/alecthomas/kong"
	"github.com/pressly/goose/v3"
)

// CLI is the migrate command line.
type CLI struct {
	DSN string `help:"Database connection string (postgres URL or sqlite:<path>)." env:"DB_DSN" default:"${default_dsn}"`

	Up     UpCmd     `cmd:"" default:"1" help:"Apply all pending migrations."`
	Down   DownCmd   `cmd:"" help:"Roll back the most recent migration."`
	Status StatusCmd `cmd:"" help:"Show which migrations are applied."`
	Create CreateCmd `cmd:"" help:"Create a new SQL migration file."`
}

type runEnv struct {
	ctx    context.Context
	dsn    string
	out    io.Writer
	logger *slog.Logger
}

func (e *runEnv) openStore() (*database.Store, error) {
	return database.Open(e.ctx, e.dsn, time.Minute)
}

type UpCmd struct{}

func (c *UpCmd) Run(env *runEnv) error {
	store, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	applied, err := database.MigrateUp(env.ctx, store)
	if err != nil {
		return err
	}
	env.logger.Info("migrations applied", "count", applied, "dsn", database.RedactDSN(env.dsn))
	return nil
}

type DownCmd struct{}

func (c *DownCmd) Run(env *runEnv) error {
	store, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := database.NewMigrator(store)
	if err != nil {
		return err
	}
	result, err := provider.Down(env.ctx)
	if err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	env.logger.Info("migration rolled back", "version", result.Source.Version, "duration", result.Duration)
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(env *runEnv) error {
	store, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := database.NewMigrator(store)
	if err != nil {
		return err
	}
	statuses, err := provider.Status(env.ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(env.out, "%05d  %-8s  %-19s  %s\n", s.Source.Version, s.State, applied, s.Source.Path)
	}
	return nil
}

type CreateCmd struct {
	Name string `arg:"" help:"Name of the migration."`
	Dir  string `help:"Directory the migration file is written to." env:"MIGRATIONS_DIR" default:"db/migrations" type:"path"`
}

func (c *CreateCmd) Run(env *runEnv) error {
	if err := goose.Create(nil, c.Dir, c.Name, "sql"); err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	env.logger.Info("migration created", "name", c.Name, "dir", c.Dir)
	return nil
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
		kong.Name("migrate"),
		kong.Description("Apply, roll back and inspect the bookstore schema migrations."),
		kong.UsageOnError(),
		kong.Vars{"default_dsn": config.DefaultDSN},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = kctx.Run(&runEnv{ctx: ctx, dsn: cli.DSN, out: os.Stdout, logger: logger})
	if err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}
