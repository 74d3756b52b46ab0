package middleware

import (
	"context"
	"net/http"
	"strings"

	"toolcare/internal/auth"
	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token and stores the caller's id
// and access scope in the request context.
func JWTMiddleware(authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, err := authSvc.ValidateToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			role := models.Role(claims.Role)
			if !role.Valid() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid role in token")
			}

			scope, err := scopeFromClaims(role, claims.BranchIDs)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid branch ids in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, role)
			ctx = auth.WithScope(ctx, scope)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func scopeFromClaims(role models.Role, rawBranchIDs []string) (auth.AccessScope, error) {
	if role == models.RoleMaximo || role == models.RoleAdministrador {
		return auth.GlobalScope(role), nil
	}

	branchIDs := make([]uuid.UUID, 0, len(rawBranchIDs))
	for _, raw := range rawBranchIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return auth.AccessScope{}, err
		}
		branchIDs = append(branchIDs, id)
	}
	return auth.BranchScope(role, branchIDs), nil
}

// RequireRole restricts a route to the given roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Request().Context().Value(common.RoleKey).(models.Role)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing role")
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
		}
	}
}
