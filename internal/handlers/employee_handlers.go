package handlers

import (
	"net/http"
	"time"

	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EmployeeHandlers struct {
	employeeService services.EmployeeService
	storageService  services.StorageService
}

func NewEmployeeHandlers(employeeService services.EmployeeService, storageService services.StorageService) *EmployeeHandlers {
	return &EmployeeHandlers{
		employeeService: employeeService,
		storageService:  storageService,
	}
}

type CreateEmployeeRequest struct {
	Name       string   `json:"name"`
	Badge      string   `json:"badge"`
	CPF        string   `json:"cpf"`
	SectorID   *string  `json:"sector_id"`
	PositionID *string  `json:"position_id"`
	BranchIDs  []string `json:"branch_ids"`
}

func (h *EmployeeHandlers) CreateEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	create := &services.CreateEmployeeRequest{
		Name:  req.Name,
		Badge: req.Badge,
		CPF:   req.CPF,
	}
	if req.SectorID != nil {
		sectorID, err := common.ValidateUUID(*req.SectorID, "sector_id")
		if err != nil {
			return common.SendValidationError(c, "sector_id", err.Error())
		}
		create.SectorID = &sectorID
	}
	if req.PositionID != nil {
		positionID, err := common.ValidateUUID(*req.PositionID, "position_id")
		if err != nil {
			return common.SendValidationError(c, "position_id", err.Error())
		}
		create.PositionID = &positionID
	}
	branchIDs, err := parseUUIDList(req.BranchIDs, "branch_ids")
	if err != nil {
		return common.SendValidationError(c, "branch_ids", err.Error())
	}
	create.BranchIDs = branchIDs

	employee, err := h.employeeService.Create(ctx, scope, create)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, employee)
}

func (h *EmployeeHandlers) GetEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	employee, err := h.employeeService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

type UpdateEmployeeRequest struct {
	Name       *string `json:"name"`
	SectorID   *string `json:"sector_id"`
	PositionID *string `json:"position_id"`
}

func (h *EmployeeHandlers) UpdateEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	update := &services.UpdateEmployeeRequest{Name: req.Name}
	if req.SectorID != nil {
		sectorID, err := common.ValidateUUID(*req.SectorID, "sector_id")
		if err != nil {
			return common.SendValidationError(c, "sector_id", err.Error())
		}
		update.SectorID = &sectorID
	}
	if req.PositionID != nil {
		positionID, err := common.ValidateUUID(*req.PositionID, "position_id")
		if err != nil {
			return common.SendValidationError(c, "position_id", err.Error())
		}
		update.PositionID = &positionID
	}

	employee, err := h.employeeService.Update(ctx, scope, id, update)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

type SetEmployeeBranchesRequest struct {
	BranchIDs []string `json:"branch_ids"`
}

func (h *EmployeeHandlers) SetEmployeeBranches(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req SetEmployeeBranchesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	branchIDs, err := parseUUIDList(req.BranchIDs, "branch_ids")
	if err != nil {
		return common.SendValidationError(c, "branch_ids", err.Error())
	}

	if err := h.employeeService.SetBranches(ctx, scope, id, branchIDs); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Branches updated"})
}

func (h *EmployeeHandlers) DeactivateEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.employeeService.Deactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Employee deactivated"})
}

func (h *EmployeeHandlers) ReactivateEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.employeeService.Reactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Employee reactivated"})
}

type ListEmployeesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *EmployeeHandlers) ListEmployees(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListEmployeesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	employees, err := h.employeeService.List(ctx, scope, req.Limit, req.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"employees": employees,
	})
}

func (h *EmployeeHandlers) UploadEmployeePhoto(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if _, err := h.employeeService.GetByID(ctx, scope, id); err != nil {
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

	objectKey, err := h.storageService.UploadPhoto(ctx, "employees", id, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return common.SendServerError(c, "Failed to store photo")
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

func parseUUIDList(raw []string, fieldName string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := common.ValidateUUID(value, fieldName)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
