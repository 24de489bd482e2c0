package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/taming/internal/model"
)

// TamedAnimalRepository stores tamed animals in PostgreSQL.
// Implements taming.Store.
type TamedAnimalRepository struct {
	pool *pgxpool.Pool
}

// NewTamedAnimalRepository creates a new TamedAnimalRepository.
func NewTamedAnimalRepository(pool *pgxpool.Pool) *TamedAnimalRepository {
	return &TamedAnimalRepository{pool: pool}
}

// LoadAll loads every tamed animal, oldest first.
func (r *TamedAnimalRepository) LoadAll(ctx context.Context) ([]model.TamedAnimal, error) {
	rows, err := r.pool.Query(ctx,
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
			customName *string
		)
		if err := rows.Scan(&row.ID, &row.OwnerID, &row.OwnerName, &row.SpeciesID, &row.Mode,
			&row.HomeX, &row.HomeY, &row.HomeZ, &row.MaxFollowDistance, &row.CreatedAt, &customName); err != nil {
			return nil, fmt.Errorf("scan tamed animal: %w", err)
		}
		if customName != nil {
			row.CustomName = *customName
		}
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
func (r *TamedAnimalRepository) Save(ctx context.Context, a model.TamedAnimal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tamed_animals
		   (id, owner_id, owner_name, species_id, mode,
		    home_x, home_y, home_z, max_follow_distance, created_at, custom_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   owner_id = EXCLUDED.owner_id,
		   owner_name = EXCLUDED.owner_name,
		   species_id = EXCLUDED.species_id,
		   mode = EXCLUDED.mode,
		   home_x = EXCLUDED.home_x,
		   home_y = EXCLUDED.home_y,
		   home_z = EXCLUDED.home_z,
		   max_follow_distance = EXCLUDED.max_follow_distance,
		   custom_name = EXCLUDED.custom_name`,
		a.ID, a.OwnerID, a.OwnerName, a.SpeciesID, string(a.Mode),
		a.Home.X, a.Home.Y, a.Home.Z, a.MaxFollowDistance, a.CreatedAt, nullString(a.CustomName))
	if err != nil {
		return fmt.Errorf("upsert tamed animal %s: %w", a.ID, err)
	}
	return nil
}

// Update overwrites the stored record. A missing record is not recreated.
func (r *TamedAnimalRepository) Update(ctx context.Context, a model.TamedAnimal) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tamed_animals SET
		   owner_id = $2,
		   owner_name = $3,
		   species_id = $4,
		   mode = $5,
		   home_x = $6,
		   home_y = $7,
		   home_z = $8,
		   max_follow_distance = $9,
		   custom_name = $10
		 WHERE id = $1`,
		a.ID, a.OwnerID, a.OwnerName, a.SpeciesID, string(a.Mode),
		a.Home.X, a.Home.Y, a.Home.Z, a.MaxFollowDistance, nullString(a.CustomName))
	if err != nil {
		return fmt.Errorf("update tamed animal %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes the animal. Deleting a missing animal is not an error.
func (r *TamedAnimalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tamed_animals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tamed animal %s: %w", id, err)
	}
	return nil
}

// animalRow is one tamed_animals row as stored.
type animalRow struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	OwnerName         string
	SpeciesID         string
	Mode              string
	HomeX             float64
	HomeY             float64
	HomeZ             float64
	MaxFollowDistance float64
	CreatedAt         int64
	CustomName        string
}

func (row animalRow) toModel() (model.TamedAnimal, error) {
	mode, err := model.ParseBehaviorMode(row.Mode)
	if err != nil {
		return model.TamedAnimal{}, fmt.Errorf("tamed animal %s: %w", row.ID, err)
	}
	return model.TamedAnimal{
		ID:                row.ID,
		OwnerID:           row.OwnerID,
		OwnerName:         row.OwnerName,
		SpeciesID:         row.SpeciesID,
		Mode:              mode,
		Home:              model.NewLocation(row.HomeX, row.HomeY, row.HomeZ),
		MaxFollowDistance: row.MaxFollowDistance,
		CreatedAt:         row.CreatedAt,
		CustomName:        row.CustomName,
	}, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
