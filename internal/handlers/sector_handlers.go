package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type SectorHandlers struct {
	sectorService services.SectorService
}

func NewSectorHandlers(sectorService services.SectorService) *SectorHandlers {
	return &SectorHandlers{sectorService: sectorService}
}

type SectorRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *SectorHandlers) CreateSector(c echo.Context) error {
	var req SectorRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	sector, err := h.sectorService.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, sector)
}

func (h *SectorHandlers) GetSector(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	sector, err := h.sectorService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sector)
}

type UpdateSectorRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *SectorHandlers) UpdateSector(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateSectorRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	sector, err := h.sectorService.Update(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sector)
}

func (h *SectorHandlers) DeactivateSector(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.sectorService.SetActive(c.Request().Context(), id, false); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Sector deactivated"})
}

type ListSectorsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *SectorHandlers) ListSectors(c echo.Context) error {
	var req ListSectorsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	sectors, err := h.sectorService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sectors": sectors,
	})
}
