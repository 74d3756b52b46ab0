package models

import (
	"time"

	"github.com/google/uuid"
)

// Loan is one borrowing transaction. While Active, ToolID and EmployeeID
// are set and the tool is LOANED. Closing snapshots the tool's and
// employee's identifying fields and nulls the live references, so a
// closed loan survives deletion of either row. A closed loan is never
// reopened.
type Loan struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       *string    `json:"name" db:"name"`
	ToolID     *uuid.UUID `json:"tool_id" db:"tool_id"`
	EmployeeID *uuid.UUID `json:"employee_id" db:"employee_id"`
	StartDate  time.Time  `json:"start_date" db:"start_date"`
	EndDate    *time.Time `json:"end_date" db:"end_date"`
	Notes      *string    `json:"notes" db:"notes"`
	Active     bool       `json:"active" db:"active"`

	// Snapshot fields, populated at close time only.
	ToolName      *string `json:"tool_name" db:"tool_name"`
	ToolSerial    *string `json:"tool_serial" db:"tool_serial"`
	EmployeeName  *string `json:"employee_name" db:"employee_name"`
	EmployeeBadge *string `json:"employee_badge" db:"employee_badge"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type LoanSearchFilter struct {
	Active     *bool      `json:"active,omitempty"`
	ToolID     *uuid.UUID `json:"tool_id,omitempty"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	BranchID   *uuid.UUID `json:"branch_id,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
