package services

import (
	"context"
	"log"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"
)

// AuditService records lifecycle events after they commit. A recording
// failure is logged and swallowed so auditing never fails the operation
// itself.
type AuditService interface {
	Record(ctx context.Context, entity, recordID, action string, detail *string)
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditService struct {
	auditRepo repositories.AuditLogRepository
}

func NewAuditService(auditRepo repositories.AuditLogRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Record(ctx context.Context, entity, recordID, action string, detail *string) {
	entry := &models.AuditLog{
		Entity:   entity,
		RecordID: recordID,
		Action:   action,
		Detail:   detail,
	}
	if actorID, ok := common.GetUserIDFromContext(ctx); ok {
		entry.ActorID = &actorID
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("Failed to record audit event %s for %s %s: %v", action, entity, recordID, err)
	}
}

func (s *auditService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	filters.Limit, filters.Offset = common.ValidatePaginationParams(filters.Limit, filters.Offset)
	return s.auditRepo.List(ctx, filters)
}
