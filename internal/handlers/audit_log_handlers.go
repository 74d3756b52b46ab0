package handlers

import (
	"net/http"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/services"

	"github.com/labstack/echo/v4"
)

type AuditLogHandlers struct {
	auditService services.AuditService
}

func NewAuditLogHandlers(auditService services.AuditService) *AuditLogHandlers {
	return &AuditLogHandlers{auditService: auditService}
}

type ListAuditLogsRequest struct {
	Entity   string `query:"entity"`
	RecordID string `query:"record_id"`
	Action   string `query:"action"`
	ActorID  string `query:"actor_id"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

func (h *AuditLogHandlers) ListAuditLogs(c echo.Context) error {
	var req ListAuditLogsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filters := &models.AuditLogFilters{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Entity != "" {
		filters.Entity = &req.Entity
	}
	if req.RecordID != "" {
		filters.RecordID = &req.RecordID
	}
	if req.Action != "" {
		filters.Action = &req.Action
	}
	if req.ActorID != "" {
		actorID, err := common.ValidateUUID(req.ActorID, "actor_id")
		if err != nil {
			return common.SendValidationError(c, "actor_id", err.Error())
		}
		filters.ActorID = &actorID
	}

	entries, err := h.auditService.List(c.Request().Context(), filters)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit_logs": entries,
	})
}
