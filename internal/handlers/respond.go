package handlers

import (
	"errors"
	"net/http"

	"toolcare/internal/auth"
	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

// respondServiceError translates service errors to the JSON error
// envelope: validation failures are 400, scope and permission failures
// 403, missing resources 404 and blocked cascades 409.
func respondServiceError(c echo.Context, err error) error {
	if verr, ok := common.AsValidationError(err); ok {
		return common.SendValidationError(c, verr.Field, verr.Message)
	}
	if berr, ok := common.AsBlockedError(err); ok {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": map[string]interface{}{
				"code":     "BLOCKED",
				"message":  berr.Error(),
				"blockers": berr.Blockers,
			},
		})
	}

	switch {
	case errors.Is(err, common.ErrBranchNotFound),
		errors.Is(err, common.ErrWarehouseNotFound),
		errors.Is(err, common.ErrSectorNotFound),
		errors.Is(err, common.ErrPositionNotFound),
		errors.Is(err, common.ErrToolNotFound),
		errors.Is(err, common.ErrEmployeeNotFound),
		errors.Is(err, common.ErrLoanNotFound),
		errors.Is(err, common.ErrMaintenanceNotFound),
		errors.Is(err, common.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case errors.Is(err, common.ErrOutOfScope):
		return common.SendForbiddenError(c, "Resource is outside your branch scope")
	case errors.Is(err, common.ErrPermissionDenied):
		return common.SendForbiddenError(c, "Permission denied")
	case errors.Is(err, services.ErrInvalidCredentials):
		return common.SendUnauthorizedError(c)
	}
	return common.SendServerError(c, "Internal server error")
}

func requestScope(c echo.Context) (auth.AccessScope, bool) {
	return auth.ScopeFromContext(c.Request().Context())
}
