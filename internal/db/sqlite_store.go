package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/taming/internal/db/migrations"
	"github.com/udisondev/taming/internal/model"
)

// SQLiteStore stores tamed animals in a single SQLite file.
// Implements taming.Store.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the
// embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, sqlDB, goose.DialectSQLite3, migrations.SQLite()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadAll loads every tamed animal, oldest first.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]model.TamedAnimal, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, owner_id, owner_name, species_id, mode,
		        home_x, home_y, home_z, max_follow_distance, created_at, custom_name
		 FROM tamed_animals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query tamed animals: %w", err)
	}
	defer rows.Close()

	var result []model.TamedAnimal
	for rows.Next() {
		var (
			row        animalRow
			id, owner  string
			customName sql.NullString
		)
		if err := rows.Scan(&id, &owner, &row.OwnerName, &row.SpeciesID, &row.Mode,
			&row.HomeX, &row.HomeY, &row.HomeZ, &row.MaxFollowDistance, &row.CreatedAt, &customName); err != nil {
			return nil, fmt.Errorf("scan tamed animal: %w", err)
		}
		if row.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("tamed animal id %q: %w", id, err)
		}
		if row.OwnerID, err = uuid.Parse(owner); err != nil {
			return nil, fmt.Errorf("tamed animal %s owner %q: %w", id, owner, err)
		}
		row.CustomName = customName.String

		a, err := row.toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tamed animals: %w", err)
	}
	return result, nil
}

// Save inserts the animal or overwrites the stored record.
func (s *SQLiteStore) Save(ctx context.Context, a model.TamedAnimal) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tamed_animals
		   (id, owner_id, owner_name, species_id, mode,
		    home_x, home_y, home_z, max_follow_distance, created_at, custom_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   owner_id = excluded.owner_id,
		   owner_name = excluded.owner_name,
		   species_id = excluded.species_id,
		   mode = excluded.mode,
		   home_x = excluded.home_x,
		   home_y = excluded.home_y,
		   home_z = excluded.home_z,
		   max_follow_distance = excluded.max_follow_distance,
		   custom_name = excluded.custom_name`,
		a.ID.String(), a.OwnerID.String(), a.OwnerName, a.SpeciesID, string(a.Mode),
		a.Home.X, a.Home.Y, a.Home.Z, a.MaxFollowDistance, a.CreatedAt,
		sql.NullString{String: a.CustomName, Valid: a.CustomName != ""})
	if err != nil {
		return fmt.Errorf("upsert tamed animal %s: %w", a.ID, err)
	}
	return nil
}

// Update overwrites the stored record. A missing record is not recreated.
func (s *SQLiteStore) Update(ctx context.Context, a model.TamedAnimal) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE tamed_animals SET
		   owner_id = ?,
		   owner_name = ?,
		   species_id = ?,
		   mode = ?,
		   home_x = ?,
		   home_y = ?,
		   home_z = ?,
		   max_follow_distance = ?,
		   custom_name = ?
		 WHERE id = ?`,
		a.OwnerID.String(), a.OwnerName, a.SpeciesID, string(a.Mode),
		a.Home.X, a.Home.Y, a.Home.Z, a.MaxFollowDistance,
		sql.NullString{String: a.CustomName, Valid: a.CustomName != ""},
		a.ID.String())
	if err != nil {
		return fmt.Errorf("update tamed animal %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes the animal. Deleting a missing animal is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tamed_animals WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete tamed animal %s: %w", id, err)
	}
	return nil
}
