package services

import (
	"context"
	"errors"
	"strings"

	"toolcare/internal/auth"
	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateEmployeeRequest struct {
	Name       string      `json:"name"`
	Badge      string      `json:"badge"`
	CPF        string      `json:"cpf"`
	SectorID   *uuid.UUID  `json:"sector_id,omitempty"`
	PositionID *uuid.UUID  `json:"position_id,omitempty"`
	BranchIDs  []uuid.UUID `json:"branch_ids"`
}

type UpdateEmployeeRequest struct {
	Name       *string    `json:"name,omitempty"`
	SectorID   *uuid.UUID `json:"sector_id,omitempty"`
	PositionID *uuid.UUID `json:"position_id,omitempty"`
}

type EmployeeService interface {
	Create(ctx context.Context, scope auth.AccessScope, req *CreateEmployeeRequest) (*models.Employee, error)
	GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Employee, error)
	GetByBadge(ctx context.Context, scope auth.AccessScope, badge string) (*models.Employee, error)
	Update(ctx context.Context, scope auth.AccessScope, id uuid.UUID, req *UpdateEmployeeRequest) (*models.Employee, error)
	SetBranches(ctx context.Context, scope auth.AccessScope, id uuid.UUID, branchIDs []uuid.UUID) error
	// Deactivate refuses while the employee holds open loans.
	Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
	Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
	List(ctx context.Context, scope auth.AccessScope, limit, offset int) ([]*models.Employee, error)
}

type employeeService struct {
	employeeRepo repositories.EmployeeRepository
	loanRepo     repositories.LoanRepository
	tx           repositories.Transactor
	auditSvc     AuditService
}

func NewEmployeeService(employeeRepo repositories.EmployeeRepository, loanRepo repositories.LoanRepository, tx repositories.Transactor, auditSvc AuditService) EmployeeService {
	return &employeeService{
		employeeRepo: employeeRepo,
		loanRepo:     loanRepo,
		tx:           tx,
		auditSvc:     auditSvc,
	}
}

func (s *employeeService) Create(ctx context.Context, scope auth.AccessScope, req *CreateEmployeeRequest) (*models.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.NewValidationError("name", "%v", err)
	}
	badge := strings.TrimSpace(req.Badge)
	if err := common.ValidateBadge(badge); err != nil {
		return nil, common.NewValidationError("badge", "%s", err.Error())
	}
	cpf := common.NormalizeCPF(req.CPF)
	if err := common.ValidateCPF(cpf); err != nil {
		return nil, common.NewValidationError("cpf", "%s", err.Error())
	}
	if len(req.BranchIDs) == 0 {
		return nil, common.NewValidationError("branch_ids", "employee must belong to at least one branch")
	}
	for _, branchID := range req.BranchIDs {
		if err := scope.RequireBranch(branchID); err != nil {
			return nil, err
		}
	}

	employee := &models.Employee{
		ID:         uuid.New(),
		Name:       name,
		Badge:      badge,
		CPF:        cpf,
		SectorID:   req.SectorID,
		PositionID: req.PositionID,
		Active:     true,
		BranchIDs:  req.BranchIDs,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.Create(ctx, employee); err != nil {
			return err
		}
		return s.employeeRepo.SetBranches(ctx, employee.ID, req.BranchIDs)
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrEmployeeNotFound
		}
		return nil, err
	}
	if err := s.requireEmployeeScope(scope, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) GetByBadge(ctx context.Context, scope auth.AccessScope, badge string) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByBadge(ctx, badge)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrEmployeeNotFound
		}
		return nil, err
	}
	if err := s.requireEmployeeScope(scope, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) Update(ctx context.Context, scope auth.AccessScope, id uuid.UUID, req *UpdateEmployeeRequest) (*models.Employee, error) {
	employee, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := common.ValidateRequiredString(name, "name"); err != nil {
			return nil, common.NewValidationError("name", "%v", err)
		}
		employee.Name = name
	}
	if req.SectorID != nil {
		employee.SectorID = req.SectorID
	}
	if req.PositionID != nil {
		employee.PositionID = req.PositionID
	}

	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) SetBranches(ctx context.Context, scope auth.AccessScope, id uuid.UUID, branchIDs []uuid.UUID) error {
	if len(branchIDs) == 0 {
		return common.NewValidationError("branch_ids", "employee must belong to at least one branch")
	}
	for _, branchID := range branchIDs {
		if err := scope.RequireBranch(branchID); err != nil {
			return err
		}
	}
	if _, err := s.GetByID(ctx, scope, id); err != nil {
		return err
	}
	return s.employeeRepo.SetBranches(ctx, id, branchIDs)
}

func (s *employeeService) Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	employee, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if !employee.Active {
		return common.NewValidationError("active", "employee '%s' is already inactive", employee.Name)
	}

	openLoans, err := s.loanRepo.CountActiveByEmployee(ctx, id)
	if err != nil {
		return err
	}
	if openLoans > 0 {
		return common.NewValidationError("id", "employee '%s' (badge %s) holds %d open loan(s); close them first", employee.Name, employee.Badge, openLoans)
	}

	if err := s.employeeRepo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, "employee", id.String(), models.ActionEmployeeDeactivated, &employee.Badge)
	return nil
}

func (s *employeeService) Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	employee, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if employee.Active {
		return common.NewValidationError("active", "employee '%s' is already active", employee.Name)
	}

	if err := s.employeeRepo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, "employee", id.String(), models.ActionEmployeeReactivated, &employee.Badge)
	return nil
}

func (s *employeeService) List(ctx context.Context, scope auth.AccessScope, limit, offset int) ([]*models.Employee, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	employees, err := s.employeeRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if scope.Global {
		return employees, nil
	}

	visible := make([]*models.Employee, 0, len(employees))
	for _, employee := range employees {
		if s.requireEmployeeScope(scope, employee) == nil {
			visible = append(visible, employee)
		}
	}
	return visible, nil
}

func (s *employeeService) requireEmployeeScope(scope auth.AccessScope, employee *models.Employee) error {
	if scope.Global {
		return nil
	}
	for _, branchID := range employee.BranchIDs {
		if scope.Covers(branchID) {
			return nil
		}
	}
	return common.ErrOutOfScope
}
