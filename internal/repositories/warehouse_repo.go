package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	Update(ctx context.Context, warehouse *models.Warehouse) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	DeactivateByBranch(ctx context.Context, branchID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, limit, offset int) ([]*models.Warehouse, error)
}

type warehouseRepo struct {
	db Database
}

func NewWarehouseRepository(db Database) WarehouseRepository {
	return &warehouseRepo{db: db}
}

func (r *warehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, branch_id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, warehouse.ID, warehouse.BranchID, warehouse.Name, warehouse.Description, warehouse.Active)
	return err
}

func (r *warehouseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	query := `
		SELECT id, branch_id, name, description, active, created_at, updated_at
		FROM warehouses
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&warehouse.ID, &warehouse.BranchID, &warehouse.Name, &warehouse.Description, &warehouse.Active, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *warehouseRepo) Update(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		UPDATE warehouses
		SET branch_id = $1, name = $2, description = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, warehouse.BranchID, warehouse.Name, warehouse.Description, warehouse.ID)
	return err
}

func (r *warehouseRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE warehouses SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, active, id)
	return err
}

func (r *warehouseRepo) DeactivateByBranch(ctx context.Context, branchID uuid.UUID) error {
	query := `UPDATE warehouses SET active = false, updated_at = NOW() WHERE branch_id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, branchID)
	return err
}

func (r *warehouseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM warehouses WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *warehouseRepo) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	query := `
		SELECT id, branch_id, name, description, active, created_at, updated_at
		FROM warehouses
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		warehouse := &models.Warehouse{}
		if err := rows.Scan(&warehouse.ID, &warehouse.BranchID, &warehouse.Name, &warehouse.Description, &warehouse.Active, &warehouse.CreatedAt, &warehouse.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, warehouse)
	}
	return warehouses, rows.Err()
}

func (r *warehouseRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, limit, offset int) ([]*models.Warehouse, error) {
	query := `
		SELECT id, branch_id, name, description, active, created_at, updated_at
		FROM warehouses
		WHERE branch_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, branchID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		warehouse := &models.Warehouse{}
		if err := rows.Scan(&warehouse.ID, &warehouse.BranchID, &warehouse.Name, &warehouse.Description, &warehouse.Active, &warehouse.CreatedAt, &warehouse.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, warehouse)
	}
	return warehouses, rows.Err()
}
