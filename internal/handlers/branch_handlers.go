package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type BranchHandlers struct {
	branchService services.BranchService
}

func NewBranchHandlers(branchService services.BranchService) *BranchHandlers {
	return &BranchHandlers{branchService: branchService}
}

func (h *BranchHandlers) CreateBranch(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateBranchRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	branch, err := h.branchService.Create(ctx, scope, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, branch)
}

func (h *BranchHandlers) GetBranch(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	branch, err := h.branchService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, branch)
}

func (h *BranchHandlers) UpdateBranch(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateBranchRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	branch, err := h.branchService.Update(ctx, scope, id, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, branch)
}

type ListBranchesRequest struct {
	ActiveOnly bool `query:"active_only"`
	Limit      int  `query:"limit"`
	Offset     int  `query:"offset"`
}

func (h *BranchHandlers) ListBranches(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListBranchesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	branches, err := h.branchService.List(ctx, scope, req.ActiveOnly, req.Limit, req.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"branches": branches,
	})
}

// DeactivateBranch runs the cascade deactivation. With ?dry_run=true
// only the blocking check runs; the report lists every tool out on loan
// or in maintenance.
func (h *BranchHandlers) DeactivateBranch(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	dryRun := c.QueryParam("dry_run") == "true"

	report, err := h.branchService.Deactivate(ctx, scope, id, dryRun)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *BranchHandlers) ReactivateBranch(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.branchService.Reactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Branch reactivated"})
}
