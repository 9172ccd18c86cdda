package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freelancehub/tracker/internal/core/ports"
)

// AuditHandler exposes the change history.
type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /audit. Records come back in the order they were written.
//
// @Summary      Audit history
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[auditRecordResponse]
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	records, err := h.service.History(c.Request().Context())
	if err != nil {
		return err
	}
	items := make([]auditRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, auditRecordResponse{
			ChangedAt:  r.ChangedAt.UTC().Format(time.RFC3339),
			ActingRole: string(r.ActingRole),
			EntityName: r.EntityName,
			OldValue:   r.OldValue,
			NewValue:   r.NewValue,
		})
	}
	return c.JSON(http.StatusOK, listResponse[auditRecordResponse]{Items: items, Total: len(items)})
}
