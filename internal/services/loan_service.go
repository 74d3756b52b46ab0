package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolcare/internal/auth"
	"toolcare/internal/caching"
	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OpenLoanRequest carries the inputs for opening a loan. StartDate
// defaults to today when zero.
type OpenLoanRequest struct {
	ToolID     uuid.UUID
	EmployeeID uuid.UUID
	StartDate  time.Time
	Notes      *string
}

// CloseLoanRequest carries the inputs for closing a loan.
type CloseLoanRequest struct {
	EndDate time.Time
	Notes   *string
}

// LoanService couples loan records to the tool's lifecycle state.
// Opening and closing run inside one transaction: the tool state change
// is a guarded conditional update, so two concurrent opens against the
// same tool resolve to exactly one winner and the loser fails cleanly.
type LoanService interface {
	Open(ctx context.Context, scope auth.AccessScope, req *OpenLoanRequest) (*models.Loan, error)
	Close(ctx context.Context, scope auth.AccessScope, loanID uuid.UUID, req *CloseLoanRequest) (*models.Loan, error)
	GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Loan, error)
	UpdateNotes(ctx context.Context, scope auth.AccessScope, id uuid.UUID, notes *string) (*models.Loan, error)
	List(ctx context.Context, scope auth.AccessScope, filter *models.LoanSearchFilter) ([]*models.Loan, error)
	Delete(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
}

type loanService struct {
	loanRepo     repositories.LoanRepository
	toolRepo     repositories.ToolRepository
	employeeRepo repositories.EmployeeRepository
	tx           repositories.Transactor
	cacheSvc     caching.CacheService
	auditSvc     AuditService
}

func NewLoanService(loanRepo repositories.LoanRepository, toolRepo repositories.ToolRepository, employeeRepo repositories.EmployeeRepository, tx repositories.Transactor, cacheSvc caching.CacheService, auditSvc AuditService) LoanService {
	return &loanService{
		loanRepo:     loanRepo,
		toolRepo:     toolRepo,
		employeeRepo: employeeRepo,
		tx:           tx,
		cacheSvc:     cacheSvc,
		auditSvc:     auditSvc,
	}
}

func (s *loanService) Open(ctx context.Context, scope auth.AccessScope, req *OpenLoanRequest) (*models.Loan, error) {
	tool, err := s.toolRepo.GetByID(ctx, req.ToolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrToolNotFound
		}
		return nil, err
	}

	branchID, err := s.toolRepo.BranchID(ctx, req.ToolID)
	if err != nil {
		return nil, err
	}
	if err := scope.RequireBranch(branchID); err != nil {
		return nil, err
	}

	if tool.State != models.ToolStateAvailable {
		return nil, common.NewValidationError("tool_id", "tool '%s' (serial %s) is %s and cannot be loaned", tool.Name, tool.SerialNumber, tool.State)
	}

	employee, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrEmployeeNotFound
		}
		return nil, err
	}
	if !employee.Active {
		return nil, common.NewValidationError("employee_id", "employee '%s' is inactive", employee.Name)
	}

	employeeBranches, err := s.employeeRepo.GetBranchIDs(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	employee.BranchIDs = employeeBranches
	if !employee.BelongsToBranch(branchID) {
		return nil, common.NewValidationError("employee_id", "employee '%s' does not belong to the branch of tool '%s'", employee.Name, tool.Name)
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	loan := &models.Loan{
		ID:         uuid.New(),
		ToolID:     &req.ToolID,
		EmployeeID: &req.EmployeeID,
		StartDate:  startDate,
		Notes:      req.Notes,
		Active:     true,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Guarded state handoff: re-checks availability at write time,
		// so a concurrent open on the same tool loses here and rolls
		// back.
		ok, err := s.toolRepo.UpdateStateFrom(ctx, req.ToolID, models.ToolStateAvailable, models.ToolStateLoaned)
		if err != nil {
			return err
		}
		if !ok {
			return common.NewValidationError("tool_id", "tool '%s' (serial %s) is no longer available", tool.Name, tool.SerialNumber)
		}

		if err := s.loanRepo.Create(ctx, loan); err != nil {
			return err
		}

		// Display name derives from the loan's own generated id.
		name := loanDisplayName(loan.ID)
		if err := s.loanRepo.SetName(ctx, loan.ID, name); err != nil {
			return err
		}
		loan.Name = &name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, "loan", loan.ID.String(), models.ActionLoanOpened, common.StringPtr(fmt.Sprintf("tool %s to employee %s", tool.SerialNumber, employee.Badge)))
	if cerr := s.cacheSvc.DeleteTool(ctx, req.ToolID); cerr != nil {
		// Stale cache entries expire on their own.
		return loan, nil
	}
	return loan, nil
}

func (s *loanService) Close(ctx context.Context, scope auth.AccessScope, loanID uuid.UUID, req *CloseLoanRequest) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrLoanNotFound
		}
		return nil, err
	}

	if !loan.Active {
		return nil, common.NewValidationError("active", "loan '%s' is already closed and cannot be reopened", common.SafeString(loan.Name))
	}
	if req.EndDate.Before(loan.StartDate) {
		return nil, common.NewValidationError("end_date", "end date %s is before start date %s", req.EndDate.Format("2006-01-02"), loan.StartDate.Format("2006-01-02"))
	}

	if loan.ToolID != nil {
		branchID, err := s.toolRepo.BranchID(ctx, *loan.ToolID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			if err := scope.RequireBranch(branchID); err != nil {
				return nil, err
			}
		}
	}

	endDate := req.EndDate
	loan.EndDate = &endDate
	if req.Notes != nil {
		loan.Notes = req.Notes
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Snapshot first, then release the tool, then null the live
		// references. Reading the relations after nulling would lose
		// the history.
		if loan.ToolID != nil {
			tool, err := s.toolRepo.GetByID(ctx, *loan.ToolID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return err
				}
				// Tool already gone: keep whatever snapshot exists.
			} else {
				loan.ToolName = &tool.Name
				loan.ToolSerial = &tool.SerialNumber

				ok, err := s.toolRepo.UpdateStateFrom(ctx, tool.ID, models.ToolStateLoaned, models.ToolStateAvailable)
				if err != nil {
					return err
				}
				if !ok {
					return common.NewValidationError("tool_id", "tool '%s' (serial %s) is not LOANED; refusing to release", tool.Name, tool.SerialNumber)
				}
			}
		}

		if loan.EmployeeID != nil {
			employee, err := s.employeeRepo.GetByID(ctx, *loan.EmployeeID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return err
				}
				// Employee already gone: keep whatever snapshot exists.
			} else {
				loan.EmployeeName = &employee.Name
				loan.EmployeeBadge = &employee.Badge
			}
		}

		return s.loanRepo.Close(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	toolID := loan.ToolID
	loan.Active = false
	loan.ToolID = nil
	loan.EmployeeID = nil

	s.auditSvc.Record(ctx, "loan", loan.ID.String(), models.ActionLoanClosed, loan.ToolSerial)
	if toolID != nil {
		_ = s.cacheSvc.DeleteTool(ctx, *toolID)
	}
	return loan, nil
}

func (s *loanService) GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrLoanNotFound
		}
		return nil, err
	}
	if err := s.requireLoanScope(ctx, scope, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) UpdateNotes(ctx context.Context, scope auth.AccessScope, id uuid.UUID, notes *string) (*models.Loan, error) {
	loan, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	// An absent notes field means "leave as is", not "clear".
	if notes == nil {
		return loan, nil
	}
	if err := s.loanRepo.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	loan.Notes = notes
	return loan, nil
}

func (s *loanService) List(ctx context.Context, scope auth.AccessScope, filter *models.LoanSearchFilter) ([]*models.Loan, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	if scope.Global {
		return s.loanRepo.List(ctx, filter)
	}

	if filter.BranchID != nil {
		if err := scope.RequireBranch(*filter.BranchID); err != nil {
			return nil, err
		}
		return s.loanRepo.List(ctx, filter)
	}

	var loans []*models.Loan
	for _, branchID := range scope.BranchIDs {
		branchFilter := *filter
		branchFilter.BranchID = &branchID
		page, err := s.loanRepo.List(ctx, &branchFilter)
		if err != nil {
			return nil, err
		}
		loans = append(loans, page...)
	}
	return loans, nil
}

// Delete hard-deletes a loan. An open loan first releases its tool back
// to AVAILABLE, but only when the tool is actually LOANED, so a state
// the deletion did not cause is never clobbered.
func (s *loanService) Delete(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrLoanNotFound
		}
		return err
	}
	if err := s.requireLoanScope(ctx, scope, loan); err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if loan.Active && loan.ToolID != nil {
			if _, err := s.toolRepo.UpdateStateFrom(ctx, *loan.ToolID, models.ToolStateLoaned, models.ToolStateAvailable); err != nil {
				return err
			}
		}
		return s.loanRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.auditSvc.Record(ctx, "loan", id.String(), models.ActionLoanDeleted, nil)
	if loan.ToolID != nil {
		_ = s.cacheSvc.DeleteTool(ctx, *loan.ToolID)
	}
	return nil
}

func (s *loanService) requireLoanScope(ctx context.Context, scope auth.AccessScope, loan *models.Loan) error {
	if scope.Global || loan.ToolID == nil {
		return nil
	}
	branchID, err := s.toolRepo.BranchID(ctx, *loan.ToolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	return scope.RequireBranch(branchID)
}

func loanDisplayName(id uuid.UUID) string {
	return fmt.Sprintf("EMP-%.8s", id.String())
}
