package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	GetByName(ctx context.Context, name string) (*models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Branch, error)
}

type branchRepo struct {
	db Database
}

func NewBranchRepository(db Database) BranchRepository {
	return &branchRepo{db: db}
}

func (r *branchRepo) Create(ctx context.Context, branch *models.Branch) error {
	query := `
		INSERT INTO branches (id, name, city, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, branch.ID, branch.Name, branch.City, branch.Active)
	return err
}

func (r *branchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	branch := &models.Branch{}
	query := `
		SELECT id, name, city, active, created_at, updated_at
		FROM branches
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&branch.ID, &branch.Name, &branch.City, &branch.Active, &branch.CreatedAt, &branch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (r *branchRepo) GetByName(ctx context.Context, name string) (*models.Branch, error) {
	branch := &models.Branch{}
	query := `
		SELECT id, name, city, active, created_at, updated_at
		FROM branches
		WHERE name = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, name).Scan(&branch.ID, &branch.Name, &branch.City, &branch.Active, &branch.CreatedAt, &branch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (r *branchRepo) Update(ctx context.Context, branch *models.Branch) error {
	query := `
		UPDATE branches
		SET name = $1, city = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, branch.Name, branch.City, branch.ID)
	return err
}

func (r *branchRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE branches SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, active, id)
	return err
}

func (r *branchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM branches WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *branchRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Branch, error) {
	query := `
		SELECT id, name, city, active, created_at, updated_at
		FROM branches
		WHERE ($1 = false OR active = true)
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []*models.Branch
	for rows.Next() {
		branch := &models.Branch{}
		if err := rows.Scan(&branch.ID, &branch.Name, &branch.City, &branch.Active, &branch.CreatedAt, &branch.UpdatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return branches, rows.Err()
}
