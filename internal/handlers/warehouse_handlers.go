package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type WarehouseHandlers struct {
	warehouseService services.WarehouseService
}

func NewWarehouseHandlers(warehouseService services.WarehouseService) *WarehouseHandlers {
	return &WarehouseHandlers{warehouseService: warehouseService}
}

type CreateWarehouseRequest struct {
	BranchID    string  `json:"branch_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *WarehouseHandlers) CreateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateWarehouseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	branchID, err := common.ValidateUUID(req.BranchID, "branch_id")
	if err != nil {
		return common.SendValidationError(c, "branch_id", err.Error())
	}

	warehouse, err := h.warehouseService.Create(ctx, scope, &services.CreateWarehouseRequest{
		BranchID:    branchID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, warehouse)
}

func (h *WarehouseHandlers) GetWarehouse(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	warehouse, err := h.warehouseService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, warehouse)
}

func (h *WarehouseHandlers) UpdateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateWarehouseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	warehouse, err := h.warehouseService.Update(ctx, scope, id, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, warehouse)
}

type ListWarehousesRequest struct {
	BranchID string `query:"branch_id"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

func (h *WarehouseHandlers) ListWarehouses(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListWarehousesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	var branchID *uuid.UUID
	if req.BranchID != "" {
		id, err := common.ValidateUUID(req.BranchID, "branch_id")
		if err != nil {
			return common.SendValidationError(c, "branch_id", err.Error())
		}
		branchID = &id
	}

	warehouses, err := h.warehouseService.List(ctx, scope, branchID, req.Limit, req.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"warehouses": warehouses,
	})
}

func (h *WarehouseHandlers) DeactivateWarehouse(c echo.Context) error {
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

	report, err := h.warehouseService.Deactivate(ctx, scope, id, dryRun)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *WarehouseHandlers) ReactivateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.warehouseService.Reactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Warehouse reactivated"})
}
