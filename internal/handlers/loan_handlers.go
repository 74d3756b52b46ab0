package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type LoanHandlers struct {
	loanService services.LoanService
}

func NewLoanHandlers(loanService services.LoanService) *LoanHandlers {
	return &LoanHandlers{loanService: loanService}
}

type OpenLoanRequest struct {
	ToolID     string  `json:"tool_id"`
	EmployeeID string  `json:"employee_id"`
	StartDate  *string `json:"start_date"`
	Notes      *string `json:"notes"`
}

func (h *LoanHandlers) OpenLoan(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req OpenLoanRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	toolID, err := common.ValidateUUID(req.ToolID, "tool_id")
	if err != nil {
		return common.SendValidationError(c, "tool_id", err.Error())
	}
	employeeID, err := common.ValidateUUID(req.EmployeeID, "employee_id")
	if err != nil {
		return common.SendValidationError(c, "employee_id", err.Error())
	}

	open := &services.OpenLoanRequest{
		ToolID:     toolID,
		EmployeeID: employeeID,
		Notes:      req.Notes,
	}
	if req.StartDate != nil {
		startDate, err := common.ParseDate(*req.StartDate, "start_date")
		if err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		open.StartDate = startDate
	}

	loan, err := h.loanService.Open(ctx, scope, open)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, loan)
}

type CloseLoanRequest struct {
	EndDate string  `json:"end_date"`
	Notes   *string `json:"notes"`
}

func (h *LoanHandlers) CloseLoan(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req CloseLoanRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	endDate, err := common.ParseDate(req.EndDate, "end_date")
	if err != nil {
		return common.SendValidationError(c, "end_date", err.Error())
	}

	loan, err := h.loanService.Close(ctx, scope, id, &services.CloseLoanRequest{
		EndDate: endDate,
		Notes:   req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *LoanHandlers) GetLoan(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	loan, err := h.loanService.GetByID(ctx, scope, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

type UpdateLoanRequest struct {
	Notes *string `json:"notes"`
}

func (h *LoanHandlers) UpdateLoan(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateLoanRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	loan, err := h.loanService.UpdateNotes(ctx, scope, id, req.Notes)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

type ListLoansRequest struct {
	Active     *bool  `query:"active"`
	ToolID     string `query:"tool_id"`
	EmployeeID string `query:"employee_id"`
	BranchID   string `query:"branch_id"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

func (h *LoanHandlers) ListLoans(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListLoansRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filter := &models.LoanSearchFilter{
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
	if req.EmployeeID != "" {
		employeeID, err := common.ValidateUUID(req.EmployeeID, "employee_id")
		if err != nil {
			return common.SendValidationError(c, "employee_id", err.Error())
		}
		filter.EmployeeID = &employeeID
	}
	if req.BranchID != "" {
		branchID, err := common.ValidateUUID(req.BranchID, "branch_id")
		if err != nil {
			return common.SendValidationError(c, "branch_id", err.Error())
		}
		filter.BranchID = &branchID
	}

	loans, err := h.loanService.List(ctx, scope, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"loans":  loans,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *LoanHandlers) DeleteLoan(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.loanService.Delete(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
