package repositories

import (
	"context"
	"fmt"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	GetByBadge(ctx context.Context, badge string) (*models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Employee, error)

	// Branch membership (many-to-many).
	GetBranchIDs(ctx context.Context, employeeID uuid.UUID) ([]uuid.UUID, error)
	SetBranches(ctx context.Context, employeeID uuid.UUID, branchIDs []uuid.UUID) error
	RemoveBranchAssociations(ctx context.Context, branchID uuid.UUID) error
}

type employeeRepo struct {
	db Database
}

func NewEmployeeRepository(db Database) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	// CPF must be unique across employees and users, badge across
	// employees; reject collisions at write time.
	var count int
	cpfCheck := `
		SELECT (SELECT COUNT(*) FROM employees WHERE cpf = $1)
		     + (SELECT COUNT(*) FROM users WHERE cpf = $1)
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, cpfCheck, employee.CPF).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check CPF uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("CPF '%s' is already registered", employee.CPF)
	}

	badgeCheck := `SELECT COUNT(*) FROM employees WHERE badge = $1`
	err = dbFrom(ctx, r.db).QueryRow(ctx, badgeCheck, employee.Badge).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check badge uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("employee with badge '%s' already exists", employee.Badge)
	}

	query := `
		INSERT INTO employees (id, name, badge, cpf, sector_id, position_id, photo_key, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err = dbFrom(ctx, r.db).Exec(ctx, query, employee.ID, employee.Name, employee.Badge, employee.CPF, employee.SectorID, employee.PositionID, employee.PhotoKey, employee.Active)
	return err
}

func (r *employeeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	employee := &models.Employee{}
	query := `
		SELECT id, name, badge, cpf, sector_id, position_id, photo_key, active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&employee.ID, &employee.Name, &employee.Badge, &employee.CPF, &employee.SectorID, &employee.PositionID, &employee.PhotoKey, &employee.Active, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepo) GetByBadge(ctx context.Context, badge string) (*models.Employee, error) {
	employee := &models.Employee{}
	query := `
		SELECT id, name, badge, cpf, sector_id, position_id, photo_key, active, created_at, updated_at
		FROM employees
		WHERE badge = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, badge).Scan(&employee.ID, &employee.Name, &employee.Badge, &employee.CPF, &employee.SectorID, &employee.PositionID, &employee.PhotoKey, &employee.Active, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	query := `
		UPDATE employees
		SET name = $1, sector_id = $2, position_id = $3, photo_key = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, employee.Name, employee.SectorID, employee.PositionID, employee.PhotoKey, employee.ID)
	return err
}

func (r *employeeRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE employees SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, active, id)
	return err
}

func (r *employeeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM employees WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *employeeRepo) List(ctx context.Context, limit, offset int) ([]*models.Employee, error) {
	query := `
		SELECT id, name, badge, cpf, sector_id, position_id, photo_key, active, created_at, updated_at
		FROM employees
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		employee := &models.Employee{}
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.Badge, &employee.CPF, &employee.SectorID, &employee.PositionID, &employee.PhotoKey, &employee.Active, &employee.CreatedAt, &employee.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (r *employeeRepo) GetBranchIDs(ctx context.Context, employeeID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT branch_id FROM employee_branches WHERE employee_id = $1`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branchIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		branchIDs = append(branchIDs, id)
	}
	return branchIDs, rows.Err()
}

func (r *employeeRepo) SetBranches(ctx context.Context, employeeID uuid.UUID, branchIDs []uuid.UUID) error {
	deleteQuery := `DELETE FROM employee_branches WHERE employee_id = $1`
	if _, err := dbFrom(ctx, r.db).Exec(ctx, deleteQuery, employeeID); err != nil {
		return err
	}

	insertQuery := `INSERT INTO employee_branches (employee_id, branch_id) VALUES ($1, $2)`
	for _, branchID := range branchIDs {
		if _, err := dbFrom(ctx, r.db).Exec(ctx, insertQuery, employeeID, branchID); err != nil {
			return err
		}
	}
	return nil
}

func (r *employeeRepo) RemoveBranchAssociations(ctx context.Context, branchID uuid.UUID) error {
	query := `DELETE FROM employee_branches WHERE branch_id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, branchID)
	return err
}
