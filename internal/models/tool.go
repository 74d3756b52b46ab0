package models

import (
	"time"

	"github.com/google/uuid"
)

// ToolState is the lifecycle state of a tool. Loan and maintenance
// services own the LOANED/IN_MAINTENANCE transitions; deactivation owns
// INACTIVE.
type ToolState string

const (
	ToolStateAvailable     ToolState = "AVAILABLE"
	ToolStateLoaned        ToolState = "LOANED"
	ToolStateInMaintenance ToolState = "IN_MAINTENANCE"
	ToolStateInactive      ToolState = "INACTIVE"
)

// toolTransitions is the explicit transition table. Anything not listed
// is illegal.
var toolTransitions = map[ToolState][]ToolState{
	ToolStateAvailable:     {ToolStateLoaned, ToolStateInMaintenance, ToolStateInactive},
	ToolStateLoaned:        {ToolStateAvailable},
	ToolStateInMaintenance: {ToolStateAvailable},
	ToolStateInactive:      {ToolStateAvailable},
}

// CanTransition reports whether from -> to is an allowed tool state
// change.
func CanTransition(from, to ToolState) bool {
	for _, next := range toolTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Tool struct {
	ID              uuid.UUID `json:"id" db:"id"`
	WarehouseID     uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	Name            string    `json:"name" db:"name"`
	SerialNumber    string    `json:"serial_number" db:"serial_number"`
	Description     *string   `json:"description" db:"description"`
	PhotoKey        *string   `json:"photo_key" db:"photo_key"`
	AcquisitionDate time.Time `json:"acquisition_date" db:"acquisition_date"`
	State           ToolState `json:"state" db:"state"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ToolRef identifies a tool in blocking-condition reports.
type ToolRef struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	State        ToolState `json:"state"`
}

// ToolSearchFilter holds search and filter criteria for tool queries
type ToolSearchFilter struct {
	Query       string     `json:"query,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
	State       *ToolState `json:"state,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}
