package handlers

import (
	"net/http"
	"time"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type ToolHandlers struct {
	toolService    services.ToolService
	storageService services.StorageService
}

func NewToolHandlers(toolService services.ToolService, storageService services.StorageService) *ToolHandlers {
	return &ToolHandlers{
		toolService:    toolService,
		storageService: storageService,
	}
}

type CreateToolRequest struct {
	WarehouseID     string  `json:"warehouse_id"`
	Name            string  `json:"name"`
	SerialNumber    string  `json:"serial_number"`
	Description     *string `json:"description"`
	AcquisitionDate *string `json:"acquisition_date"`
}

func (h *ToolHandlers) CreateTool(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateToolRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	warehouseID, err := common.ValidateUUID(req.WarehouseID, "warehouse_id")
	if err != nil {
		return common.SendValidationError(c, "warehouse_id", err.Error())
	}

	tool := &models.Tool{
		WarehouseID:  warehouseID,
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Description:  req.Description,
	}
	if req.AcquisitionDate != nil {
		acquisitionDate, err := common.ParseDate(*req.AcquisitionDate, "acquisition_date")
		if err != nil {
			return common.SendValidationError(c, "acquisition_date", err.Error())
		}
		tool.AcquisitionDate = acquisitionDate
	}

	if err := h.toolService.Create(ctx, scope, tool); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, tool)
}

func (h *ToolHandlers) GetTool(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tool, err := h.toolService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tool)
}

type UpdateToolRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	WarehouseID *string `json:"warehouse_id"`
}

func (h *ToolHandlers) UpdateTool(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateToolRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tool, err := h.toolService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Name != nil {
		tool.Name = *req.Name
	}
	if req.Description != nil {
		tool.Description = req.Description
	}
	if req.WarehouseID != nil {
		warehouseID, err := common.ValidateUUID(*req.WarehouseID, "warehouse_id")
		if err != nil {
			return common.SendValidationError(c, "warehouse_id", err.Error())
		}
		tool.WarehouseID = warehouseID
	}

	if err := h.toolService.Update(ctx, scope, tool); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tool)
}

type ListToolsRequest struct {
	Query       string `query:"q"`
	WarehouseID string `query:"warehouse_id"`
	BranchID    string `query:"branch_id"`
	State       string `query:"state"`
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
}

func (h *ToolHandlers) ListTools(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListToolsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filter := &models.ToolSearchFilter{
		Query:  req.Query,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.WarehouseID != "" {
		warehouseID, err := common.ValidateUUID(req.WarehouseID, "warehouse_id")
		if err != nil {
			return common.SendValidationError(c, "warehouse_id", err.Error())
		}
		filter.WarehouseID = &warehouseID
	}
	if req.BranchID != "" {
		branchID, err := common.ValidateUUID(req.BranchID, "branch_id")
		if err != nil {
			return common.SendValidationError(c, "branch_id", err.Error())
		}
		filter.BranchID = &branchID
	}
	if req.State != "" {
		state := models.ToolState(req.State)
		filter.State = &state
	}

	tools, err := h.toolService.List(ctx, scope, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tools":  tools,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *ToolHandlers) DeactivateTool(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.toolService.Deactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Tool deactivated"})
}

func (h *ToolHandlers) ReactivateTool(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.toolService.Reactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Tool reactivated"})
}

func (h *ToolHandlers) DeleteTool(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.toolService.Delete(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadToolPhoto stores the photo and returns the object key plus a
// presigned URL.
func (h *ToolHandlers) UploadToolPhoto(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tool, err := h.toolService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return common.SendValidationError(c, "photo", "photo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read photo")
	}
	defer src.Close()

	objectKey, err := h.storageService.UploadPhoto(ctx, "tools", id, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return common.SendServerError(c, "Failed to store photo")
	}

	tool.PhotoKey = &objectKey
	if err := h.toolService.Update(ctx, scope, tool); err != nil {
		return respondServiceError(c, err)
	}

	url, err := h.storageService.GetPhotoURL(ctx, objectKey, 15*time.Minute)
	if err != nil {
		return common.SendServerError(c, "Failed to generate photo URL")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"photo_key": objectKey,
		"photo_url": url,
	})
}
