package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	SetName(ctx context.Context, id uuid.UUID, name string) error
	// Close persists the snapshot fields, nulls the live references and
	// flips active to false in a single statement.
	Close(ctx context.Context, loan *models.Loan) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.LoanSearchFilter) ([]*models.Loan, error)
	CountActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (int, error)
}

type loanRepo struct {
	db Database
}

func NewLoanRepository(db Database) LoanRepository {
	return &loanRepo{db: db}
}

func (r *loanRepo) Create(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO loans (id, name, tool_id, employee_id, start_date, end_date, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, loan.ID, loan.Name, loan.ToolID, loan.EmployeeID, loan.StartDate, loan.EndDate, loan.Notes, loan.Active)
	return err
}

func (r *loanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	loan := &models.Loan{}
	query := `
		SELECT id, name, tool_id, employee_id, start_date, end_date, notes, active,
		       tool_name, tool_serial, employee_name, employee_badge, created_at, updated_at
		FROM loans
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&loan.ID, &loan.Name, &loan.ToolID, &loan.EmployeeID, &loan.StartDate, &loan.EndDate, &loan.Notes, &loan.Active,
		&loan.ToolName, &loan.ToolSerial, &loan.EmployeeName, &loan.EmployeeBadge, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *loanRepo) SetName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE loans SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, name, id)
	return err
}

func (r *loanRepo) Close(ctx context.Context, loan *models.Loan) error {
	query := `
		UPDATE loans
		SET tool_id = NULL, employee_id = NULL, active = false,
		    end_date = $1, notes = $2,
		    tool_name = $3, tool_serial = $4, employee_name = $5, employee_badge = $6,
		    updated_at = NOW()
		WHERE id = $7 AND active = true
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, loan.EndDate, loan.Notes, loan.ToolName, loan.ToolSerial, loan.EmployeeName, loan.EmployeeBadge, loan.ID)
	return err
}

func (r *loanRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	query := `UPDATE loans SET notes = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, notes, id)
	return err
}

func (r *loanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM loans WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *loanRepo) List(ctx context.Context, filter *models.LoanSearchFilter) ([]*models.Loan, error) {
	query := `
		SELECT l.id, l.name, l.tool_id, l.employee_id, l.start_date, l.end_date, l.notes, l.active,
		       l.tool_name, l.tool_serial, l.employee_name, l.employee_badge, l.created_at, l.updated_at
		FROM loans l
		WHERE ($1::boolean IS NULL OR l.active = $1)
		  AND ($2::uuid IS NULL OR l.tool_id = $2)
		  AND ($3::uuid IS NULL OR l.employee_id = $3)
		  AND ($4::uuid IS NULL OR l.tool_id IN (
			SELECT t.id FROM tools t
			JOIN warehouses w ON w.id = t.warehouse_id
			WHERE w.branch_id = $4))
		ORDER BY l.start_date DESC, l.created_at DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, filter.Active, filter.ToolID, filter.EmployeeID, filter.BranchID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan := &models.Loan{}
		if err := rows.Scan(
			&loan.ID, &loan.Name, &loan.ToolID, &loan.EmployeeID, &loan.StartDate, &loan.EndDate, &loan.Notes, &loan.Active,
			&loan.ToolName, &loan.ToolSerial, &loan.EmployeeName, &loan.EmployeeBadge, &loan.CreatedAt, &loan.UpdatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (r *loanRepo) CountActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM loans WHERE employee_id = $1 AND active = true`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, employeeID).Scan(&count)
	return count, err
}
