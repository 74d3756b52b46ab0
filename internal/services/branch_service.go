package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"toolcare/internal/auth"
	"toolcare/internal/caching"
	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const branchCacheTTL = 10 * time.Minute

type CreateBranchRequest struct {
	Name string  `json:"name"`
	City *string `json:"city,omitempty"`
}

type UpdateBranchRequest struct {
	Name *string `json:"name,omitempty"`
	City *string `json:"city,omitempty"`
}

type BranchService interface {
	Create(ctx context.Context, scope auth.AccessScope, req *CreateBranchRequest) (*models.Branch, error)
	GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Branch, error)
	Update(ctx context.Context, scope auth.AccessScope, id uuid.UUID, req *UpdateBranchRequest) (*models.Branch, error)
	List(ctx context.Context, scope auth.AccessScope, activeOnly bool, limit, offset int) ([]*models.Branch, error)
	// Deactivate cascades to warehouses, tools and branch associations.
	// With dryRun the check runs and nothing is written.
	Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID, dryRun bool) (*models.BranchDeactivationReport, error)
	Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
}

type branchService struct {
	branchRepo    repositories.BranchRepository
	warehouseRepo repositories.WarehouseRepository
	toolRepo      repositories.ToolRepository
	employeeRepo  repositories.EmployeeRepository
	userRepo      repositories.UserRepository
	tx            repositories.Transactor
	cacheSvc      caching.CacheService
	auditSvc      AuditService
}

func NewBranchService(branchRepo repositories.BranchRepository, warehouseRepo repositories.WarehouseRepository, toolRepo repositories.ToolRepository, employeeRepo repositories.EmployeeRepository, userRepo repositories.UserRepository, tx repositories.Transactor, cacheSvc caching.CacheService, auditSvc AuditService) BranchService {
	return &branchService{
		branchRepo:    branchRepo,
		warehouseRepo: warehouseRepo,
		toolRepo:      toolRepo,
		employeeRepo:  employeeRepo,
		userRepo:      userRepo,
		tx:            tx,
		cacheSvc:      cacheSvc,
		auditSvc:      auditSvc,
	}
}

func (s *branchService) Create(ctx context.Context, scope auth.AccessScope, req *CreateBranchRequest) (*models.Branch, error) {
	if !scope.IsMaximo() {
		return nil, common.ErrPermissionDenied
	}

	name := strings.TrimSpace(req.Name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.NewValidationError("name", "%v", err)
	}

	branch := &models.Branch{
		ID:     uuid.New(),
		Name:   name,
		City:   req.City,
		Active: true,
	}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *branchService) GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Branch, error) {
	if err := scope.RequireBranch(id); err != nil {
		return nil, err
	}

	cached, err := s.cacheSvc.GetBranch(ctx, id)
	if err == nil && cached != nil {
		return cached, nil
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrBranchNotFound
		}
		return nil, err
	}

	_ = s.cacheSvc.SetBranch(ctx, branch, branchCacheTTL)
	return branch, nil
}

func (s *branchService) Update(ctx context.Context, scope auth.AccessScope, id uuid.UUID, req *UpdateBranchRequest) (*models.Branch, error) {
	if !scope.IsMaximo() {
		return nil, common.ErrPermissionDenied
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrBranchNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := common.ValidateRequiredString(name, "name"); err != nil {
			return nil, common.NewValidationError("name", "%v", err)
		}
		branch.Name = name
	}
	if req.City != nil {
		branch.City = req.City
	}

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		return nil, err
	}

	_ = s.cacheSvc.DeleteBranch(ctx, id)
	return branch, nil
}

func (s *branchService) List(ctx context.Context, scope auth.AccessScope, activeOnly bool, limit, offset int) ([]*models.Branch, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	branches, err := s.branchRepo.List(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	if scope.Global {
		return branches, nil
	}

	visible := make([]*models.Branch, 0, len(branches))
	for _, branch := range branches {
		if scope.Covers(branch.ID) {
			visible = append(visible, branch)
		}
	}
	return visible, nil
}

func (s *branchService) Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID, dryRun bool) (*models.BranchDeactivationReport, error) {
	if !scope.IsMaximo() {
		return nil, common.ErrPermissionDenied
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrBranchNotFound
		}
		return nil, err
	}
	if !branch.Active {
		return nil, common.NewValidationError("active", "branch '%s' is already inactive", branch.Name)
	}

	report := &models.BranchDeactivationReport{
		BranchID: id,
		DryRun:   dryRun,
	}

	if dryRun {
		blockers, err := s.toolRepo.ListBlockingByBranch(ctx, id)
		if err != nil {
			return nil, err
		}
		report.Blockers = blockers
		report.CanProceed = len(blockers) == 0
		return report, nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// The blocking check re-runs inside the transaction so a loan
		// opened between check and cascade still aborts the whole thing.
		blockers, err := s.toolRepo.ListBlockingByBranch(ctx, id)
		if err != nil {
			return err
		}
		if len(blockers) > 0 {
			report.Blockers = blockers
			return &common.BlockedError{Resource: "branch '" + branch.Name + "'", Blockers: blockers}
		}

		if err := s.branchRepo.SetActive(ctx, id, false); err != nil {
			return err
		}
		if err := s.warehouseRepo.DeactivateByBranch(ctx, id); err != nil {
			return err
		}
		if err := s.toolRepo.DeactivateByBranch(ctx, id); err != nil {
			return err
		}
		if err := s.employeeRepo.RemoveBranchAssociations(ctx, id); err != nil {
			return err
		}
		return s.userRepo.RemoveBranchAssociations(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	report.CanProceed = true
	s.auditSvc.Record(ctx, "branch", id.String(), models.ActionBranchDeactivated, &branch.Name)
	_ = s.cacheSvc.DeleteBranch(ctx, id)
	return report, nil
}

func (s *branchService) Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	if !scope.IsMaximo() {
		return common.ErrPermissionDenied
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrBranchNotFound
		}
		return err
	}
	if branch.Active {
		return common.NewValidationError("active", "branch '%s' is already active", branch.Name)
	}

	// Reactivation restores the branch itself only. Warehouses and tools
	// come back one by one through their own endpoints.
	if err := s.branchRepo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, "branch", id.String(), models.ActionBranchReactivated, &branch.Name)
	_ = s.cacheSvc.DeleteBranch(ctx, id)
	return nil
}
