package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, maintenance *models.Maintenance) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Maintenance, error)
	SetName(ctx context.Context, id uuid.UUID, name string) error
	// Close persists the snapshot fields, nulls the tool reference and
	// flips active to false in one statement. The type column is never
	// written after creation.
	Close(ctx context.Context, maintenance *models.Maintenance) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.MaintenanceSearchFilter) ([]*models.Maintenance, error)
}

type maintenanceRepo struct {
	db Database
}

func NewMaintenanceRepository(db Database) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

func (r *maintenanceRepo) Create(ctx context.Context, maintenance *models.Maintenance) error {
	query := `
		INSERT INTO maintenances (id, name, tool_id, type, start_date, end_date, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, maintenance.ID, maintenance.Name, maintenance.ToolID, maintenance.Type, maintenance.StartDate, maintenance.EndDate, maintenance.Notes, maintenance.Active)
	return err
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	maintenance := &models.Maintenance{}
	query := `
		SELECT id, name, tool_id, type, start_date, end_date, notes, active,
		       tool_name, tool_serial, created_at, updated_at
		FROM maintenances
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&maintenance.ID, &maintenance.Name, &maintenance.ToolID, &maintenance.Type, &maintenance.StartDate, &maintenance.EndDate, &maintenance.Notes, &maintenance.Active,
		&maintenance.ToolName, &maintenance.ToolSerial, &maintenance.CreatedAt, &maintenance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return maintenance, nil
}

func (r *maintenanceRepo) SetName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE maintenances SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, name, id)
	return err
}

func (r *maintenanceRepo) Close(ctx context.Context, maintenance *models.Maintenance) error {
	query := `
		UPDATE maintenances
		SET tool_id = NULL, active = false,
		    end_date = $1, notes = $2,
		    tool_name = $3, tool_serial = $4,
		    updated_at = NOW()
		WHERE id = $5 AND active = true
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, maintenance.EndDate, maintenance.Notes, maintenance.ToolName, maintenance.ToolSerial, maintenance.ID)
	return err
}

func (r *maintenanceRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	query := `UPDATE maintenances SET notes = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, notes, id)
	return err
}

func (r *maintenanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM maintenances WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *maintenanceRepo) List(ctx context.Context, filter *models.MaintenanceSearchFilter) ([]*models.Maintenance, error) {
	query := `
		SELECT m.id, m.name, m.tool_id, m.type, m.start_date, m.end_date, m.notes, m.active,
		       m.tool_name, m.tool_serial, m.created_at, m.updated_at
		FROM maintenances m
		WHERE ($1::boolean IS NULL OR m.active = $1)
		  AND ($2::uuid IS NULL OR m.tool_id = $2)
		  AND ($3::text IS NULL OR m.type = $3)
		  AND ($4::uuid IS NULL OR m.tool_id IN (
			SELECT t.id FROM tools t
			JOIN warehouses w ON w.id = t.warehouse_id
			WHERE w.branch_id = $4))
		ORDER BY m.start_date DESC, m.created_at DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, filter.Active, filter.ToolID, filter.Type, filter.BranchID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var maintenances []*models.Maintenance
	for rows.Next() {
		maintenance := &models.Maintenance{}
		if err := rows.Scan(
			&maintenance.ID, &maintenance.Name, &maintenance.ToolID, &maintenance.Type, &maintenance.StartDate, &maintenance.EndDate, &maintenance.Notes, &maintenance.Active,
			&maintenance.ToolName, &maintenance.ToolSerial, &maintenance.CreatedAt, &maintenance.UpdatedAt); err != nil {
			return nil, err
		}
		maintenances = append(maintenances, maintenance)
	}
	return maintenances, rows.Err()
}
