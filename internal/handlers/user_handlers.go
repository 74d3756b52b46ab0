package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

type CreateUserRequest struct {
	Name      string   `json:"name"`
	CPF       string   `json:"cpf"`
	Password  string   `json:"password"`
	Role      string   `json:"role"`
	BranchIDs []string `json:"branch_ids"`
}

func (h *UserHandlers) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	branchIDs, err := parseUUIDList(req.BranchIDs, "branch_ids")
	if err != nil {
		return common.SendValidationError(c, "branch_ids", err.Error())
	}

	user, err := h.userService.Create(ctx, scope, callerID, &services.CreateUserRequest{
		Name:      req.Name,
		CPF:       req.CPF,
		Password:  req.Password,
		Role:      models.Role(req.Role),
		BranchIDs: branchIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.userService.GetByID(ctx, scope, callerID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (h *UserHandlers) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	update := &services.UpdateUserRequest{
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		update.Role = &role
	}

	user, err := h.userService.Update(ctx, scope, callerID, id, update)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

type SetUserBranchesRequest struct {
	BranchIDs []string `json:"branch_ids"`
}

func (h *UserHandlers) SetUserBranches(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req SetUserBranchesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	branchIDs, err := parseUUIDList(req.BranchIDs, "branch_ids")
	if err != nil {
		return common.SendValidationError(c, "branch_ids", err.Error())
	}

	if err := h.userService.SetBranches(ctx, scope, id, branchIDs); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Branches updated"})
}

func (h *UserHandlers) DeactivateUser(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.userService.Deactivate(ctx, scope, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deactivated"})
}

type ListUsersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *UserHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	scope, ok := requestScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListUsersRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	users, err := h.userService.List(ctx, scope, req.Limit, req.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
	})
}
