package common

import (
	"errors"
	"fmt"
	"strings"

	"toolcare/internal/models"
)

// Common domain errors
var (
	ErrBranchNotFound      = errors.New("branch not found")
	ErrWarehouseNotFound   = errors.New("warehouse not found")
	ErrSectorNotFound      = errors.New("sector not found")
	ErrPositionNotFound    = errors.New("position not found")
	ErrToolNotFound        = errors.New("tool not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrMaintenanceNotFound = errors.New("maintenance not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrOutOfScope          = errors.New("resource outside caller's branch scope")
	ErrPermissionDenied    = errors.New("permission denied")
)

// ValidationError is a precondition violation surfaced to the caller. It
// names the offending entity and, where relevant, its current state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// BlockedError rejects a cascade deactivation, enumerating every tool
// that prevents it. Nothing is mutated when it is returned.
type BlockedError struct {
	Resource string
	Blockers []models.ToolRef
}

func (e *BlockedError) Error() string {
	parts := make([]string, 0, len(e.Blockers))
	for _, b := range e.Blockers {
		parts = append(parts, fmt.Sprintf("%s (serial %s, state %s)", b.Name, b.SerialNumber, b.State))
	}
	return fmt.Sprintf("cannot deactivate %s: blocked by tools: %s", e.Resource, strings.Join(parts, "; "))
}

// AsBlockedError unwraps err into a *BlockedError if it is one.
func AsBlockedError(err error) (*BlockedError, bool) {
	var berr *BlockedError
	if errors.As(err, &berr) {
		return berr, true
	}
	return nil, false
}
