package models

import (
	"time"

	"github.com/google/uuid"
)

type Warehouse struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BranchID    uuid.UUID `json:"branch_id" db:"branch_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type WarehouseDeactivationReport struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	DryRun      bool      `json:"dry_run"`
	CanProceed  bool      `json:"can_proceed"`
	Blockers    []ToolRef `json:"blockers,omitempty"`
}
