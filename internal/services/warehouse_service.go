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

type CreateWarehouseRequest struct {
	BranchID    uuid.UUID `json:"branch_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

type UpdateWarehouseRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type WarehouseService interface {
	Create(ctx context.Context, scope auth.AccessScope, req *CreateWarehouseRequest) (*models.Warehouse, error)
	GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Warehouse, error)
	Update(ctx context.Context, scope auth.AccessScope, id uuid.UUID, req *UpdateWarehouseRequest) (*models.Warehouse, error)
	List(ctx context.Context, scope auth.AccessScope, branchID *uuid.UUID, limit, offset int) ([]*models.Warehouse, error)
	Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID, dryRun bool) (*models.WarehouseDeactivationReport, error)
	Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
}

type warehouseService struct {
	warehouseRepo repositories.WarehouseRepository
	branchRepo    repositories.BranchRepository
	toolRepo      repositories.ToolRepository
	tx            repositories.Transactor
	auditSvc      AuditService
}

func NewWarehouseService(warehouseRepo repositories.WarehouseRepository, branchRepo repositories.BranchRepository, toolRepo repositories.ToolRepository, tx repositories.Transactor, auditSvc AuditService) WarehouseService {
	return &warehouseService{
		warehouseRepo: warehouseRepo,
		branchRepo:    branchRepo,
		toolRepo:      toolRepo,
		tx:            tx,
		auditSvc:      auditSvc,
	}
}

func (s *warehouseService) Create(ctx context.Context, scope auth.AccessScope, req *CreateWarehouseRequest) (*models.Warehouse, error) {
	if err := scope.RequireBranch(req.BranchID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.NewValidationError("name", "%v", err)
	}

	branch, err := s.branchRepo.GetByID(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrBranchNotFound
		}
		return nil, err
	}
	if !branch.Active {
		return nil, common.NewValidationError("branch_id", "branch '%s' is inactive", branch.Name)
	}

	warehouse := &models.Warehouse{
		ID:          uuid.New(),
		BranchID:    req.BranchID,
		Name:        name,
		Description: req.Description,
		Active:      true,
	}
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *warehouseService) GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrWarehouseNotFound
		}
		return nil, err
	}
	if err := scope.RequireBranch(warehouse.BranchID); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *warehouseService) Update(ctx context.Context, scope auth.AccessScope, id uuid.UUID, req *UpdateWarehouseRequest) (*models.Warehouse, error) {
	warehouse, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := common.ValidateRequiredString(name, "name"); err != nil {
			return nil, common.NewValidationError("name", "%v", err)
		}
		warehouse.Name = name
	}
	if req.Description != nil {
		warehouse.Description = req.Description
	}

	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *warehouseService) List(ctx context.Context, scope auth.AccessScope, branchID *uuid.UUID, limit, offset int) ([]*models.Warehouse, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	if branchID != nil {
		if err := scope.RequireBranch(*branchID); err != nil {
			return nil, err
		}
		return s.warehouseRepo.ListByBranch(ctx, *branchID, limit, offset)
	}

	if scope.Global {
		return s.warehouseRepo.List(ctx, limit, offset)
	}

	var warehouses []*models.Warehouse
	for _, bid := range scope.BranchIDs {
		page, err := s.warehouseRepo.ListByBranch(ctx, bid, limit, offset)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, page...)
	}
	return warehouses, nil
}

func (s *warehouseService) Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID, dryRun bool) (*models.WarehouseDeactivationReport, error) {
	warehouse, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !warehouse.Active {
		return nil, common.NewValidationError("active", "warehouse '%s' is already inactive", warehouse.Name)
	}

	report := &models.WarehouseDeactivationReport{
		WarehouseID: id,
		DryRun:      dryRun,
	}

	if dryRun {
		blockers, err := s.toolRepo.ListBlockingByWarehouse(ctx, id)
		if err != nil {
			return nil, err
		}
		report.Blockers = blockers
		report.CanProceed = len(blockers) == 0
		return report, nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		blockers, err := s.toolRepo.ListBlockingByWarehouse(ctx, id)
		if err != nil {
			return err
		}
		if len(blockers) > 0 {
			report.Blockers = blockers
			return &common.BlockedError{Resource: "warehouse '" + warehouse.Name + "'", Blockers: blockers}
		}

		if err := s.warehouseRepo.SetActive(ctx, id, false); err != nil {
			return err
		}
		return s.toolRepo.DeactivateByWarehouse(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	report.CanProceed = true
	s.auditSvc.Record(ctx, "warehouse", id.String(), models.ActionWarehouseDeactivated, &warehouse.Name)
	return report, nil
}

func (s *warehouseService) Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	warehouse, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if warehouse.Active {
		return common.NewValidationError("active", "warehouse '%s' is already active", warehouse.Name)
	}

	branch, err := s.branchRepo.GetByID(ctx, warehouse.BranchID)
	if err != nil {
		return err
	}
	if !branch.Active {
		return common.NewValidationError("branch_id", "branch '%s' is inactive; reactivate it first", branch.Name)
	}

	if err := s.warehouseRepo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, "warehouse", id.String(), models.ActionWarehouseReactivated, &warehouse.Name)
	return nil
}
