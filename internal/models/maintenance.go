package models

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceType is fixed at creation and never mutated afterwards.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "PREVENTIVE"
	MaintenanceCorrective MaintenanceType = "CORRECTIVE"
)

func (t MaintenanceType) Valid() bool {
	return t == MaintenancePreventive || t == MaintenanceCorrective
}

// Maintenance mirrors Loan without a borrower. The tool is
// IN_MAINTENANCE while Active; closing snapshots the tool's name and
// serial and nulls the reference.
type Maintenance struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      *string         `json:"name" db:"name"`
	ToolID    *uuid.UUID      `json:"tool_id" db:"tool_id"`
	Type      MaintenanceType `json:"type" db:"type"`
	StartDate time.Time       `json:"start_date" db:"start_date"`
	EndDate   *time.Time      `json:"end_date" db:"end_date"`
	Notes     *string         `json:"notes" db:"notes"`
	Active    bool            `json:"active" db:"active"`

	// Snapshot fields, populated at close time only.
	ToolName   *string `json:"tool_name" db:"tool_name"`
	ToolSerial *string `json:"tool_serial" db:"tool_serial"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type MaintenanceSearchFilter struct {
	Active   *bool            `json:"active,omitempty"`
	ToolID   *uuid.UUID       `json:"tool_id,omitempty"`
	BranchID *uuid.UUID       `json:"branch_id,omitempty"`
	Type     *MaintenanceType `json:"type,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}
