package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type SectorRepository interface {
	Create(ctx context.Context, sector *models.Sector) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sector, error)
	GetByName(ctx context.Context, name string) (*models.Sector, error)
	Update(ctx context.Context, sector *models.Sector) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Sector, error)
}

type sectorRepo struct {
	db Database
}

func NewSectorRepository(db Database) SectorRepository {
	return &sectorRepo{db: db}
}

func (r *sectorRepo) Create(ctx context.Context, sector *models.Sector) error {
	query := `
		INSERT INTO sectors (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, sector.ID, sector.Name, sector.Description, sector.Active)
	return err
}

func (r *sectorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Sector, error) {
	sector := &models.Sector{}
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM sectors
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&sector.ID, &sector.Name, &sector.Description, &sector.Active, &sector.CreatedAt, &sector.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sector, nil
}

func (r *sectorRepo) GetByName(ctx context.Context, name string) (*models.Sector, error) {
	sector := &models.Sector{}
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM sectors
		WHERE name = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, name).Scan(&sector.ID, &sector.Name, &sector.Description, &sector.Active, &sector.CreatedAt, &sector.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sector, nil
}

func (r *sectorRepo) Update(ctx context.Context, sector *models.Sector) error {
	query := `
		UPDATE sectors
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, sector.Name, sector.Description, sector.ID)
	return err
}

func (r *sectorRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE sectors SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, active, id)
	return err
}

func (r *sectorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sectors WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *sectorRepo) List(ctx context.Context, limit, offset int) ([]*models.Sector, error) {
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM sectors
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sectors []*models.Sector
	for rows.Next() {
		sector := &models.Sector{}
		if err := rows.Scan(&sector.ID, &sector.Name, &sector.Description, &sector.Active, &sector.CreatedAt, &sector.UpdatedAt); err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}
	return sectors, rows.Err()
}
