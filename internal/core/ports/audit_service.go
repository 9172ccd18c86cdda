package ports

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// AuditService attributes changes to the acting identity and exposes the history.
type AuditService interface {
	Record(ctx context.Context, entity, oldValue, newValue string)
	History(ctx context.Context) ([]domain.AuditRecord, error)
}
