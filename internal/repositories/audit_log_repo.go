package repositories

import (
	"context"
	"time"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogRepo struct {
	db Database
}

func NewAuditLogRepository(db Database) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO audit_logs (id, entity, record_id, action, detail, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, entry.ID, entry.Entity, entry.RecordID, entry.Action, entry.Detail, entry.ActorID, entry.CreatedAt)
	return err
}

func (r *auditLogRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	query := `
		SELECT id, entity, record_id, action, detail, actor_id, created_at
		FROM audit_logs
		WHERE ($1::text IS NULL OR entity = $1)
		  AND ($2::text IS NULL OR record_id = $2)
		  AND ($3::text IS NULL OR action = $3)
		  AND ($4::uuid IS NULL OR actor_id = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, filters.Entity, filters.RecordID, filters.Action, filters.ActorID, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		if err := rows.Scan(&entry.ID, &entry.Entity, &entry.RecordID, &entry.Action, &entry.Detail, &entry.ActorID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
