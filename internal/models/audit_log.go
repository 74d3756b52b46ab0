package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a lifecycle event (loan opened/closed, maintenance
// opened/closed, branch/warehouse deactivated, hard deletes).
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Entity    string     `json:"entity" db:"entity"`
	RecordID  string     `json:"record_id" db:"record_id"`
	Action    string     `json:"action" db:"action"`
	Detail    *string    `json:"detail" db:"detail"`
	ActorID   *uuid.UUID `json:"actor_id" db:"actor_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

const (
	ActionLoanOpened            = "LOAN_OPENED"
	ActionLoanClosed            = "LOAN_CLOSED"
	ActionLoanDeleted           = "LOAN_DELETED"
	ActionMaintenanceOpened     = "MAINTENANCE_OPENED"
	ActionMaintenanceClosed     = "MAINTENANCE_CLOSED"
	ActionMaintenanceDeleted    = "MAINTENANCE_DELETED"
	ActionToolDeactivated       = "TOOL_DEACTIVATED"
	ActionToolReactivated       = "TOOL_REACTIVATED"
	ActionBranchDeactivated     = "BRANCH_DEACTIVATED"
	ActionBranchReactivated     = "BRANCH_REACTIVATED"
	ActionWarehouseDeactivated  = "WAREHOUSE_DEACTIVATED"
	ActionWarehouseReactivated  = "WAREHOUSE_REACTIVATED"
	ActionEmployeeDeactivated   = "EMPLOYEE_DEACTIVATED"
	ActionEmployeeReactivated   = "EMPLOYEE_REACTIVATED"
)

type AuditLogFilters struct {
	Entity   *string    `json:"entity"`
	RecordID *string    `json:"record_id"`
	Action   *string    `json:"action"`
	ActorID  *uuid.UUID `json:"actor_id"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
