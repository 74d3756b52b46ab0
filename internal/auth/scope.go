// Package auth holds the access-scope capability threaded through every
// request. The scope is computed once from the caller's JWT claims and
// passed explicitly into service calls; branch-restricted callers are
// rejected (not silently filtered) when they reference resources outside
// their branches.
package auth

import (
	"context"

	"toolcare/internal/common"
	"toolcare/internal/models"

	"github.com/google/uuid"
)

// AccessScope is the caller's visibility: either global (MAXIMO,
// ADMINISTRADOR) or restricted to a set of branch ids (COORDENADOR).
type AccessScope struct {
	Global    bool
	Role      models.Role
	BranchIDs []uuid.UUID
}

// GlobalScope returns an unrestricted scope for the given role.
func GlobalScope(role models.Role) AccessScope {
	return AccessScope{Global: true, Role: role}
}

// BranchScope returns a scope restricted to the given branches.
func BranchScope(role models.Role, branchIDs []uuid.UUID) AccessScope {
	return AccessScope{Role: role, BranchIDs: branchIDs}
}

// Covers reports whether the scope permits access to the given branch.
func (s AccessScope) Covers(branchID uuid.UUID) bool {
	if s.Global {
		return true
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// RequireBranch returns ErrOutOfScope when the scope does not cover the
// branch.
func (s AccessScope) RequireBranch(branchID uuid.UUID) error {
	if !s.Covers(branchID) {
		return common.ErrOutOfScope
	}
	return nil
}

// IsMaximo reports whether the caller holds the highest privilege role.
func (s AccessScope) IsMaximo() bool {
	return s.Role == models.RoleMaximo
}

// WithScope stores the scope in ctx.
func WithScope(ctx context.Context, scope AccessScope) context.Context {
	return context.WithValue(ctx, common.ScopeKey, scope)
}

// ScopeFromContext extracts the scope stored by the JWT middleware.
func ScopeFromContext(ctx context.Context) (AccessScope, bool) {
	scope, ok := ctx.Value(common.ScopeKey).(AccessScope)
	return scope, ok
}
