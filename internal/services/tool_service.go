package services

import (
	"context"
	"errors"
	"time"

	"toolcare/internal/auth"
	"toolcare/internal/caching"
	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const toolCacheTTL = 5 * time.Minute

// ToolService is the registry for tools and the single owner of their
// state field. Loan and maintenance services drive the LOANED and
// IN_MAINTENANCE transitions through the repository's guarded update;
// this service owns registration, deactivation and reactivation.
type ToolService interface {
	Create(ctx context.Context, scope auth.AccessScope, tool *models.Tool) error
	GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Tool, error)
	Update(ctx context.Context, scope auth.AccessScope, tool *models.Tool) error
	Delete(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
	List(ctx context.Context, scope auth.AccessScope, filter *models.ToolSearchFilter) ([]*models.Tool, error)
	Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
	Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
}

type toolService struct {
	toolRepo      repositories.ToolRepository
	warehouseRepo repositories.WarehouseRepository
	cacheSvc      caching.CacheService
	auditSvc      AuditService
}

func NewToolService(toolRepo repositories.ToolRepository, warehouseRepo repositories.WarehouseRepository, cacheSvc caching.CacheService, auditSvc AuditService) ToolService {
	return &toolService{
		toolRepo:      toolRepo,
		warehouseRepo: warehouseRepo,
		cacheSvc:      cacheSvc,
		auditSvc:      auditSvc,
	}
}

func (s *toolService) Create(ctx context.Context, scope auth.AccessScope, tool *models.Tool) error {
	if err := common.ValidateRequiredString(tool.Name, "name"); err != nil {
		return common.NewValidationError("name", "%v", err)
	}
	if err := common.ValidateRequiredString(tool.SerialNumber, "serial_number"); err != nil {
		return common.NewValidationError("serial_number", "%v", err)
	}

	warehouse, err := s.warehouseRepo.GetByID(ctx, tool.WarehouseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrWarehouseNotFound
		}
		return err
	}
	if !warehouse.Active {
		return common.NewValidationError("warehouse_id", "warehouse '%s' is inactive", warehouse.Name)
	}
	if err := scope.RequireBranch(warehouse.BranchID); err != nil {
		return err
	}

	tool.ID = uuid.New()
	tool.State = models.ToolStateAvailable
	if tool.AcquisitionDate.IsZero() {
		tool.AcquisitionDate = time.Now()
	}

	return s.toolRepo.Create(ctx, tool)
}

func (s *toolService) GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Tool, error) {
	if cached, err := s.cacheSvc.GetTool(ctx, id); err == nil && cached != nil {
		if err := s.requireToolScope(ctx, scope, cached); err != nil {
			return nil, err
		}
		return cached, nil
	}

	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrToolNotFound
		}
		return nil, err
	}
	if err := s.requireToolScope(ctx, scope, tool); err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetTool(ctx, tool, toolCacheTTL); err != nil {
		// Cache failures are not fatal for reads.
		return tool, nil
	}
	return tool, nil
}

func (s *toolService) Update(ctx context.Context, scope auth.AccessScope, tool *models.Tool) error {
	existing, err := s.toolRepo.GetByID(ctx, tool.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrToolNotFound
		}
		return err
	}
	if err := s.requireToolScope(ctx, scope, existing); err != nil {
		return err
	}
	if tool.SerialNumber != "" && tool.SerialNumber != existing.SerialNumber {
		return common.NewValidationError("serial_number", "serial number is immutable")
	}

	if err := s.toolRepo.Update(ctx, tool); err != nil {
		return err
	}
	return s.cacheSvc.DeleteTool(ctx, tool.ID)
}

func (s *toolService) Delete(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	existing, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrToolNotFound
		}
		return err
	}
	if err := s.requireToolScope(ctx, scope, existing); err != nil {
		return err
	}

	if err := s.toolRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.cacheSvc.DeleteTool(ctx, id)
}

func (s *toolService) List(ctx context.Context, scope auth.AccessScope, filter *models.ToolSearchFilter) ([]*models.Tool, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	if scope.Global {
		return s.toolRepo.List(ctx, filter)
	}

	if filter.BranchID != nil {
		if err := scope.RequireBranch(*filter.BranchID); err != nil {
			return nil, err
		}
		return s.toolRepo.List(ctx, filter)
	}

	// Branch-restricted caller without an explicit branch filter sees
	// the union of its branches.
	var tools []*models.Tool
	for _, branchID := range scope.BranchIDs {
		branchFilter := *filter
		branchFilter.BranchID = &branchID
		page, err := s.toolRepo.List(ctx, &branchFilter)
		if err != nil {
			return nil, err
		}
		tools = append(tools, page...)
	}
	return tools, nil
}

// Deactivate is permitted only from AVAILABLE.
func (s *toolService) Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrToolNotFound
		}
		return err
	}
	if err := s.requireToolScope(ctx, scope, tool); err != nil {
		return err
	}

	ok, err := s.toolRepo.UpdateStateFrom(ctx, id, models.ToolStateAvailable, models.ToolStateInactive)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewValidationError("state", "tool '%s' (serial %s) cannot be deactivated while %s", tool.Name, tool.SerialNumber, tool.State)
	}

	s.auditSvc.Record(ctx, "tool", id.String(), models.ActionToolDeactivated, nil)
	return s.cacheSvc.DeleteTool(ctx, id)
}

// Reactivate is permitted only from INACTIVE.
func (s *toolService) Reactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrToolNotFound
		}
		return err
	}
	if err := s.requireToolScope(ctx, scope, tool); err != nil {
		return err
	}

	ok, err := s.toolRepo.UpdateStateFrom(ctx, id, models.ToolStateInactive, models.ToolStateAvailable)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewValidationError("state", "tool '%s' (serial %s) is %s, only INACTIVE tools can be reactivated", tool.Name, tool.SerialNumber, tool.State)
	}

	s.auditSvc.Record(ctx, "tool", id.String(), models.ActionToolReactivated, nil)
	return s.cacheSvc.DeleteTool(ctx, id)
}

func (s *toolService) requireToolScope(ctx context.Context, scope auth.AccessScope, tool *models.Tool) error {
	if scope.Global {
		return nil
	}
	warehouse, err := s.warehouseRepo.GetByID(ctx, tool.WarehouseID)
	if err != nil {
		return err
	}
	return scope.RequireBranch(warehouse.BranchID)
}
