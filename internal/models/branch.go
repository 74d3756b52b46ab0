package models

import (
	"time"

	"github.com/google/uuid"
)

type Branch struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	City      *string   `json:"city" db:"city"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BranchDeactivationReport is returned by branch deactivation. In dry-run
// mode only the check runs; Blockers lists every tool that prevents the
// cascade.
type BranchDeactivationReport struct {
	BranchID   uuid.UUID `json:"branch_id"`
	DryRun     bool      `json:"dry_run"`
	CanProceed bool      `json:"can_proceed"`
	Blockers   []ToolRef `json:"blockers,omitempty"`
}
