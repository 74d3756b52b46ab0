package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type PositionHandlers struct {
	positionService services.PositionService
}

func NewPositionHandlers(positionService services.PositionService) *PositionHandlers {
	return &PositionHandlers{positionService: positionService}
}

type PositionRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *PositionHandlers) CreatePosition(c echo.Context) error {
	var req PositionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	position, err := h.positionService.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, position)
}

func (h *PositionHandlers) GetPosition(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	position, err := h.positionService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, position)
}

type UpdatePositionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *PositionHandlers) UpdatePosition(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdatePositionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	position, err := h.positionService.Update(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, position)
}

func (h *PositionHandlers) DeactivatePosition(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.positionService.SetActive(c.Request().Context(), id, false); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Position deactivated"})
}

type ListPositionsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *PositionHandlers) ListPositions(c echo.Context) error {
	var req ListPositionsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	positions, err := h.positionService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"positions": positions,
	})
}
