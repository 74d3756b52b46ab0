package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines access scope: MAXIMO and ADMINISTRADOR are global,
// COORDENADOR is restricted to its assigned branches.
type Role string

const (
	RoleMaximo        Role = "MAXIMO"
	RoleAdministrador Role = "ADMINISTRADOR"
	RoleCoordenador   Role = "COORDENADOR"
)

func (r Role) Valid() bool {
	return r == RoleMaximo || r == RoleAdministrador || r == RoleCoordenador
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CPF          string    `json:"cpf" db:"cpf"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	PhotoKey     *string   `json:"photo_key" db:"photo_key"`
	Active       bool      `json:"active" db:"active"`
	// BranchIDs scopes COORDENADOR users; empty for global roles.
	BranchIDs []uuid.UUID `json:"branch_ids" db:"-"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
