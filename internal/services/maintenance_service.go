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

// OpenMaintenanceRequest carries the inputs for opening a maintenance.
// The type is fixed here and immutable afterwards.
type OpenMaintenanceRequest struct {
	ToolID    uuid.UUID
	Type      models.MaintenanceType
	StartDate time.Time
	Notes     *string
}

type CloseMaintenanceRequest struct {
	EndDate time.Time
	Notes   *string
}

// UpdateMaintenanceRequest allows notes edits on an open maintenance.
// Any attempt to change the type is rejected.
type UpdateMaintenanceRequest struct {
	Type  *models.MaintenanceType
	Notes *string
}

// MaintenanceService mirrors LoanService without a borrower: the tool
// goes AVAILABLE -> IN_MAINTENANCE on open and back on close, with the
// same snapshot, delete-safety and no-reopen rules.
type MaintenanceService interface {
	Open(ctx context.Context, scope auth.AccessScope, req *OpenMaintenanceRequest) (*models.Maintenance, error)
	Close(ctx context.Context, scope auth.AccessScope, maintenanceID uuid.UUID, req *CloseMaintenanceRequest) (*models.Maintenance, error)
	Update(ctx context.Context, scope auth.AccessScope, maintenanceID uuid.UUID, req *UpdateMaintenanceRequest) (*models.Maintenance, error)
	GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Maintenance, error)
	List(ctx context.Context, scope auth.AccessScope, filter *models.MaintenanceSearchFilter) ([]*models.Maintenance, error)
	Delete(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
}

type maintenanceService struct {
	maintenanceRepo repositories.MaintenanceRepository
	toolRepo        repositories.ToolRepository
	tx              repositories.Transactor
	cacheSvc        caching.CacheService
	auditSvc        AuditService
}

func NewMaintenanceService(maintenanceRepo repositories.MaintenanceRepository, toolRepo repositories.ToolRepository, tx repositories.Transactor, cacheSvc caching.CacheService, auditSvc AuditService) MaintenanceService {
	return &maintenanceService{
		maintenanceRepo: maintenanceRepo,
		toolRepo:        toolRepo,
		tx:              tx,
		cacheSvc:        cacheSvc,
		auditSvc:        auditSvc,
	}
}

func (s *maintenanceService) Open(ctx context.Context, scope auth.AccessScope, req *OpenMaintenanceRequest) (*models.Maintenance, error) {
	if !req.Type.Valid() {
		return nil, common.NewValidationError("type", "maintenance type must be PREVENTIVE or CORRECTIVE")
	}

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
		return nil, common.NewValidationError("tool_id", "tool '%s' (serial %s) is %s and cannot enter maintenance", tool.Name, tool.SerialNumber, tool.State)
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	maintenance := &models.Maintenance{
		ID:        uuid.New(),
		ToolID:    &req.ToolID,
		Type:      req.Type,
		StartDate: startDate,
		Notes:     req.Notes,
		Active:    true,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.toolRepo.UpdateStateFrom(ctx, req.ToolID, models.ToolStateAvailable, models.ToolStateInMaintenance)
		if err != nil {
			return err
		}
		if !ok {
			return common.NewValidationError("tool_id", "tool '%s' (serial %s) is no longer available", tool.Name, tool.SerialNumber)
		}

		if err := s.maintenanceRepo.Create(ctx, maintenance); err != nil {
			return err
		}

		name := maintenanceDisplayName(maintenance.ID)
		if err := s.maintenanceRepo.SetName(ctx, maintenance.ID, name); err != nil {
			return err
		}
		maintenance.Name = &name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, "maintenance", maintenance.ID.String(), models.ActionMaintenanceOpened, common.StringPtr(fmt.Sprintf("%s on tool %s", req.Type, tool.SerialNumber)))
	_ = s.cacheSvc.DeleteTool(ctx, req.ToolID)
	return maintenance, nil
}

func (s *maintenanceService) Close(ctx context.Context, scope auth.AccessScope, maintenanceID uuid.UUID, req *CloseMaintenanceRequest) (*models.Maintenance, error) {
	maintenance, err := s.maintenanceRepo.GetByID(ctx, maintenanceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrMaintenanceNotFound
		}
		return nil, err
	}

	if !maintenance.Active {
		return nil, common.NewValidationError("active", "maintenance '%s' is already closed and cannot be reopened", common.SafeString(maintenance.Name))
	}
	if req.EndDate.Before(maintenance.StartDate) {
		return nil, common.NewValidationError("end_date", "end date %s is before start date %s", req.EndDate.Format("2006-01-02"), maintenance.StartDate.Format("2006-01-02"))
	}

	if maintenance.ToolID != nil {
		branchID, err := s.toolRepo.BranchID(ctx, *maintenance.ToolID)
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
	maintenance.EndDate = &endDate
	if req.Notes != nil {
		maintenance.Notes = req.Notes
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Snapshot before nulling the reference.
		if maintenance.ToolID != nil {
			tool, err := s.toolRepo.GetByID(ctx, *maintenance.ToolID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return err
				}
			} else {
				maintenance.ToolName = &tool.Name
				maintenance.ToolSerial = &tool.SerialNumber

				ok, err := s.toolRepo.UpdateStateFrom(ctx, tool.ID, models.ToolStateInMaintenance, models.ToolStateAvailable)
				if err != nil {
					return err
				}
				if !ok {
					return common.NewValidationError("tool_id", "tool '%s' (serial %s) is not IN_MAINTENANCE; refusing to release", tool.Name, tool.SerialNumber)
				}
			}
		}

		return s.maintenanceRepo.Close(ctx, maintenance)
	})
	if err != nil {
		return nil, err
	}

	toolID := maintenance.ToolID
	maintenance.Active = false
	maintenance.ToolID = nil

	s.auditSvc.Record(ctx, "maintenance", maintenance.ID.String(), models.ActionMaintenanceClosed, maintenance.ToolSerial)
	if toolID != nil {
		_ = s.cacheSvc.DeleteTool(ctx, *toolID)
	}
	return maintenance, nil
}

func (s *maintenanceService) Update(ctx context.Context, scope auth.AccessScope, maintenanceID uuid.UUID, req *UpdateMaintenanceRequest) (*models.Maintenance, error) {
	maintenance, err := s.maintenanceRepo.GetByID(ctx, maintenanceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrMaintenanceNotFound
		}
		return nil, err
	}
	if err := s.requireMaintenanceScope(ctx, scope, maintenance); err != nil {
		return nil, err
	}

	if req.Type != nil && *req.Type != maintenance.Type {
		return nil, common.NewValidationError("type", "maintenance type is fixed at creation and cannot be changed")
	}

	if req.Notes != nil {
		if err := s.maintenanceRepo.UpdateNotes(ctx, maintenanceID, req.Notes); err != nil {
			return nil, err
		}
		maintenance.Notes = req.Notes
	}
	return maintenance, nil
}

func (s *maintenanceService) GetByID(ctx context.Context, scope auth.AccessScope, id uuid.UUID) (*models.Maintenance, error) {
	maintenance, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrMaintenanceNotFound
		}
		return nil, err
	}
	if err := s.requireMaintenanceScope(ctx, scope, maintenance); err != nil {
		return nil, err
	}
	return maintenance, nil
}

func (s *maintenanceService) List(ctx context.Context, scope auth.AccessScope, filter *models.MaintenanceSearchFilter) ([]*models.Maintenance, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	if scope.Global {
		return s.maintenanceRepo.List(ctx, filter)
	}

	if filter.BranchID != nil {
		if err := scope.RequireBranch(*filter.BranchID); err != nil {
			return nil, err
		}
		return s.maintenanceRepo.List(ctx, filter)
	}

	var maintenances []*models.Maintenance
	for _, branchID := range scope.BranchIDs {
		branchFilter := *filter
		branchFilter.BranchID = &branchID
		page, err := s.maintenanceRepo.List(ctx, &branchFilter)
		if err != nil {
			return nil, err
		}
		maintenances = append(maintenances, page...)
	}
	return maintenances, nil
}

func (s *maintenanceService) Delete(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	maintenance, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrMaintenanceNotFound
		}
		return err
	}
	if err := s.requireMaintenanceScope(ctx, scope, maintenance); err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if maintenance.Active && maintenance.ToolID != nil {
			// Release only from IN_MAINTENANCE; any other state was not
			// caused by this record.
			if _, err := s.toolRepo.UpdateStateFrom(ctx, *maintenance.ToolID, models.ToolStateInMaintenance, models.ToolStateAvailable); err != nil {
				return err
			}
		}
		return s.maintenanceRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.auditSvc.Record(ctx, "maintenance", id.String(), models.ActionMaintenanceDeleted, nil)
	if maintenance.ToolID != nil {
		_ = s.cacheSvc.DeleteTool(ctx, *maintenance.ToolID)
	}
	return nil
}

func (s *maintenanceService) requireMaintenanceScope(ctx context.Context, scope auth.AccessScope, maintenance *models.Maintenance) error {
	if scope.Global || maintenance.ToolID == nil {
		return nil
	}
	branchID, err := s.toolRepo.BranchID(ctx, *maintenance.ToolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	return scope.RequireBranch(branchID)
}

func maintenanceDisplayName(id uuid.UUID) string {
	return fmt.Sprintf("MNT-%.8s", id.String())
}
