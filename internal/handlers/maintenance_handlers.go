package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type MaintenanceHandlers struct {
	maintenanceService services.MaintenanceService
}

func NewMaintenanceHandlers(maintenanceService services.MaintenanceService) *MaintenanceHandlers {
	return &MaintenanceHandlers{maintenanceService: maintenanceService}
}

type OpenMaintenanceRequest struct {
	ToolID    string  `json:"tool_id"`
	Type      string  `json:"type"`
	StartDate *string `json:"start_date"`
	Notes     *string `json:"notes"`
}

func (h *MaintenanceHandlers) OpenMaintenance(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req OpenMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	toolID, err := common.ValidateUUID(req.ToolID, "tool_id")
	if err != nil {
		return common.SendValidationError(c, "tool_id", err.Error())
	}

	open := &services.OpenMaintenanceRequest{
		ToolID: toolID,
		Type:   models.MaintenanceType(req.Type),
		Notes:  req.Notes,
	}
	if req.StartDate != nil {
		startDate, err := common.ParseDate(*req.StartDate, "start_date")
		if err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		open.StartDate = startDate
	}

	maintenance, err := h.maintenanceService.Open(ctx, scope, open)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, maintenance)
}

type CloseMaintenanceRequest struct {
	EndDate string  `json:"end_date"`
	Notes   *string `json:"notes"`
}

func (h *MaintenanceHandlers) CloseMaintenance(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req CloseMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	endDate, err := common.ParseDate(req.EndDate, "end_date")
	if err != nil {
		return common.SendValidationError(c, "end_date", err.Error())
	}

	maintenance, err := h.maintenanceService.Close(ctx, scope, id, &services.CloseMaintenanceRequest{
		EndDate: endDate,
		Notes:   req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, maintenance)
}

func (h *MaintenanceHandlers) GetMaintenance(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	maintenance, err := h.maintenanceService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, maintenance)
}

type UpdateMaintenanceRequest struct {
	Type  *string `json:"type"`
	Notes *string `json:"notes"`
}

func (h *MaintenanceHandlers) UpdateMaintenance(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	update := &services.UpdateMaintenanceRequest{Notes: req.Notes}
	if req.Type != nil {
		maintenanceType := models.MaintenanceType(*req.Type)
		update.Type = &maintenanceType
	}

	maintenance, err := h.maintenanceService.Update(ctx, scope, id, update)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, maintenance)
}

type ListMaintenancesRequest struct {
	Active   *bool  `query:"active"`
	ToolID   string `query:"tool_id"`
	BranchID string `query:"branch_id"`
	Type     string `query:"type"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

func (h *MaintenanceHandlers) ListMaintenances(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListMaintenancesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filter := &models.MaintenanceSearchFilter{
		Active: req.Active,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.ToolID != "" {
		toolID, err := common.ValidateUUID(req.ToolID, "tool_id")
		if err != nil {
			return common.SendValidationError(c, "tool_id", err.Error())
		}
		filter.ToolID = &toolID
	}
	if req.BranchID != "" {
		branchID, err := common.ValidateUUID(req.BranchID, "branch_id")
		if err != nil {
			return common.SendValidationError(c, "branch_id", err.Error())
		}
		filter.BranchID = &branchID
	}
	if req.Type != "" {
		maintenanceType := models.MaintenanceType(req.Type)
		filter.Type = &maintenanceType
	}

	maintenances, err := h.maintenanceService.List(ctx, scope, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"maintenances": maintenances,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})
}

func (h *MaintenanceHandlers) DeleteMaintenance(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.maintenanceService.Delete(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
