package repositories

import (
	"context"
	"fmt"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type ToolRepository interface {
	Create(ctx context.Context, tool *models.Tool) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tool, error)
	GetBySerial(ctx context.Context, serial string) (*models.Tool, error)
	Update(ctx context.Context, tool *models.Tool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ToolSearchFilter) ([]*models.Tool, error)

	// UpdateStateFrom performs a guarded conditional state change:
	// the row is updated only when its current state equals expected.
	// Returns false when the guard did not match, meaning a concurrent
	// writer got there first or the precondition no longer holds.
	UpdateStateFrom(ctx context.Context, id uuid.UUID, expected, next models.ToolState) (bool, error)

	// BranchID resolves the tool's owning branch through its warehouse.
	BranchID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// ListBlockingByBranch returns tools under the branch's warehouses
	// whose state prevents a cascade deactivation.
	ListBlockingByBranch(ctx context.Context, branchID uuid.UUID) ([]models.ToolRef, error)
	ListBlockingByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.ToolRef, error)

	DeactivateByBranch(ctx context.Context, branchID uuid.UUID) error
	DeactivateByWarehouse(ctx context.Context, warehouseID uuid.UUID) error
}

type toolRepo struct {
	db Database
}

func NewToolRepository(db Database) ToolRepository {
	return &toolRepo{db: db}
}

func (r *toolRepo) Create(ctx context.Context, tool *models.Tool) error {
	// Serial numbers are the immutable identity; reject duplicates up
	// front with a readable message instead of a bare constraint error.
	var count int
	serialCheck := `SELECT COUNT(*) FROM tools WHERE serial_number = $1`
	err := dbFrom(ctx, r.db).QueryRow(ctx, serialCheck, tool.SerialNumber).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check serial uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("tool with serial number '%s' already exists", tool.SerialNumber)
	}

	query := `
		INSERT INTO tools (id, warehouse_id, name, serial_number, description, photo_key, acquisition_date, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err = dbFrom(ctx, r.db).Exec(ctx, query, tool.ID, tool.WarehouseID, tool.Name, tool.SerialNumber, tool.Description, tool.PhotoKey, tool.AcquisitionDate, tool.State)
	return err
}

func (r *toolRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	tool := &models.Tool{}
	query := `
		SELECT id, warehouse_id, name, serial_number, description, photo_key, acquisition_date, state, created_at, updated_at
		FROM tools
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&tool.ID, &tool.WarehouseID, &tool.Name, &tool.SerialNumber, &tool.Description, &tool.PhotoKey, &tool.AcquisitionDate, &tool.State, &tool.CreatedAt, &tool.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tool, nil
}

func (r *toolRepo) GetBySerial(ctx context.Context, serial string) (*models.Tool, error) {
	tool := &models.Tool{}
	query := `
		SELECT id, warehouse_id, name, serial_number, description, photo_key, acquisition_date, state, created_at, updated_at
		FROM tools
		WHERE serial_number = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, serial).Scan(&tool.ID, &tool.WarehouseID, &tool.Name, &tool.SerialNumber, &tool.Description, &tool.PhotoKey, &tool.AcquisitionDate, &tool.State, &tool.CreatedAt, &tool.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tool, nil
}

// Update never touches serial_number or state; the serial is immutable
// and state changes go through UpdateStateFrom.
func (r *toolRepo) Update(ctx context.Context, tool *models.Tool) error {
	query := `
		UPDATE tools
		SET warehouse_id = $1, name = $2, description = $3, photo_key = $4, acquisition_date = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, tool.WarehouseID, tool.Name, tool.Description, tool.PhotoKey, tool.AcquisitionDate, tool.ID)
	return err
}

func (r *toolRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tools WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *toolRepo) List(ctx context.Context, filter *models.ToolSearchFilter) ([]*models.Tool, error) {
	query := `
		SELECT t.id, t.warehouse_id, t.name, t.serial_number, t.description, t.photo_key, t.acquisition_date, t.state, t.created_at, t.updated_at
		FROM tools t
		JOIN warehouses w ON w.id = t.warehouse_id
		WHERE ($1::uuid IS NULL OR t.warehouse_id = $1)
		  AND ($2::uuid IS NULL OR w.branch_id = $2)
		  AND ($3::text IS NULL OR t.state = $3)
		  AND ($4 = '' OR t.name ILIKE '%' || $4 || '%' OR t.serial_number ILIKE '%' || $4 || '%')
		ORDER BY t.name
		LIMIT $5 OFFSET $6
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, filter.WarehouseID, filter.BranchID, filter.State, filter.Query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []*models.Tool
	for rows.Next() {
		tool := &models.Tool{}
		if err := rows.Scan(&tool.ID, &tool.WarehouseID, &tool.Name, &tool.SerialNumber, &tool.Description, &tool.PhotoKey, &tool.AcquisitionDate, &tool.State, &tool.CreatedAt, &tool.UpdatedAt); err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

func (r *toolRepo) UpdateStateFrom(ctx context.Context, id uuid.UUID, expected, next models.ToolState) (bool, error) {
	if !models.CanTransition(expected, next) {
		return false, fmt.Errorf("illegal tool state transition %s -> %s", expected, next)
	}
	query := `
		UPDATE tools
		SET state = $1, updated_at = NOW()
		WHERE id = $2 AND state = $3
	`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, next, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *toolRepo) BranchID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var branchID uuid.UUID
	query := `
		SELECT w.branch_id
		FROM tools t
		JOIN warehouses w ON w.id = t.warehouse_id
		WHERE t.id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&branchID)
	if err != nil {
		return uuid.Nil, err
	}
	return branchID, nil
}

func (r *toolRepo) ListBlockingByBranch(ctx context.Context, branchID uuid.UUID) ([]models.ToolRef, error) {
	query := `
		SELECT t.id, t.name, t.serial_number, t.state
		FROM tools t
		JOIN warehouses w ON w.id = t.warehouse_id
		WHERE w.branch_id = $1 AND t.state IN ('LOANED', 'IN_MAINTENANCE')
		ORDER BY t.name
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.ToolRef
	for rows.Next() {
		var ref models.ToolRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.SerialNumber, &ref.State); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *toolRepo) ListBlockingByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.ToolRef, error) {
	query := `
		SELECT id, name, serial_number, state
		FROM tools
		WHERE warehouse_id = $1 AND state IN ('LOANED', 'IN_MAINTENANCE')
		ORDER BY name
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.ToolRef
	for rows.Next() {
		var ref models.ToolRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.SerialNumber, &ref.State); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *toolRepo) DeactivateByBranch(ctx context.Context, branchID uuid.UUID) error {
	query := `
		UPDATE tools
		SET state = 'INACTIVE', updated_at = NOW()
		WHERE warehouse_id IN (SELECT id FROM warehouses WHERE branch_id = $1)
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, branchID)
	return err
}

func (r *toolRepo) DeactivateByWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	query := `
		UPDATE tools
		SET state = 'INACTIVE', updated_at = NOW()
		WHERE warehouse_id = $1
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, warehouseID)
	return err
}
