package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/taming/internal/db/migrations"
)

// RunMigrations applies the PostgreSQL migrations on the given DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return migrate(ctx, sqlDB, goose.DialectPostgres, migrations.Postgres())
}

// migrate runs every pending migration of fsys through a goose Provider.
func migrate(ctx context.Context, sqlDB *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating %s migration provider: %w", dialect, err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running %s migrations: %w", dialect, err)
	}
	for _, r := range results {
		slog.Debug("migration applied",
			"dialect", dialect,
			"version", r.Source.Version,
			"duration", r.Duration)
	}
	return nil
}
