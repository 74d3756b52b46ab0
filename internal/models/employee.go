package models

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Badge      string     `json:"badge" db:"badge"`
	CPF        string     `json:"cpf" db:"cpf"`
	SectorID   *uuid.UUID `json:"sector_id" db:"sector_id"`
	PositionID *uuid.UUID `json:"position_id" db:"position_id"`
	PhotoKey   *string    `json:"photo_key" db:"photo_key"`
	Active     bool       `json:"active" db:"active"`
	// BranchIDs is the employee's branch membership (many-to-many),
	// loaded from employee_branches.
	BranchIDs []uuid.UUID `json:"branch_ids" db:"-"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// BelongsToBranch reports whether the employee is a member of the given
// branch.
func (e *Employee) BelongsToBranch(branchID uuid.UUID) bool {
	for _, id := range e.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
