package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type PositionRepository interface {
	Create(ctx context.Context, position *models.Position) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Position, error)
	GetByName(ctx context.Context, name string) (*models.Position, error)
	Update(ctx context.Context, position *models.Position) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Position, error)
}

type positionRepo struct {
	db Database
}

func NewPositionRepository(db Database) PositionRepository {
	return &positionRepo{db: db}
}

func (r *positionRepo) Create(ctx context.Context, position *models.Position) error {
	query := `
		INSERT INTO positions (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, position.ID, position.Name, position.Description, position.Active)
	return err
}

func (r *positionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	position := &models.Position{}
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM positions
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&position.ID, &position.Name, &position.Description, &position.Active, &position.CreatedAt, &position.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return position, nil
}

func (r *positionRepo) GetByName(ctx context.Context, name string) (*models.Position, error) {
	position := &models.Position{}
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM positions
		WHERE name = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, name).Scan(&position.ID, &position.Name, &position.Description, &position.Active, &position.CreatedAt, &position.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return position, nil
}

func (r *positionRepo) Update(ctx context.Context, position *models.Position) error {
	query := `
		UPDATE positions
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, position.Name, position.Description, position.ID)
	return err
}

func (r *positionRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE positions SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, active, id)
	return err
}

func (r *positionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM positions WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *positionRepo) List(ctx context.Context, limit, offset int) ([]*models.Position, error) {
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM positions
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		position := &models.Position{}
		if err := rows.Scan(&position.ID, &position.Name, &position.Description, &position.Active, &position.CreatedAt, &position.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, rows.Err()
}
