package handlers

import (
	"fmt"
	"net/http"
	"time"

	"toolcare/internal/caching"
	"toolcare/internal/common"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = time.Minute
)

type AuthHandlers struct {
	authService services.AuthService
	cacheSvc    caching.CacheService
}

func NewAuthHandlers(authService services.AuthService, cacheSvc caching.CacheService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cacheSvc:    cacheSvc,
	}
}

type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.CPF == "" || req.Password == "" {
		return common.SendValidationError(c, "credentials", "cpf and password are required")
	}

	// Brute-force guard keyed by client IP.
	rateLimitKey := fmt.Sprintf("login:%s", c.RealIP())
	limited, err := h.cacheSvc.IsRateLimited(ctx, rateLimitKey, loginAttemptLimit, loginAttemptWindow)
	if err == nil && limited {
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many login attempts", nil))
	}

	tokens, err := h.authService.Login(ctx, req.CPF, req.Password)
	if err != nil {
		_ = h.cacheSvc.IncrementRateLimit(ctx, rateLimitKey, loginAttemptWindow)
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandlers) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}
