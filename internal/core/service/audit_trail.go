package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

// AuditTrail stamps changes with the acting role and hands them to the
// background writer. History reads straight from the store.
type AuditTrail struct {
	writer ports.AuditAppender
	store  ports.AuditStore
	now    func() time.Time
	log    zerolog.Logger
}

func NewAuditTrail(writer ports.AuditAppender, store ports.AuditStore, log zerolog.Logger) *AuditTrail {
	return &AuditTrail{
		writer: writer,
		store:  store,
		now:    time.Now,
		log:    log.With().Str("component", "audit").Logger(),
	}
}

// Record never fails the caller: a rejected record is logged and dropped.
func (a *AuditTrail) Record(ctx context.Context, entity, oldValue, newValue string) {
	rec := domain.AuditRecord{
		ChangedAt:  a.now().UTC(),
		EntityName: entity,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if id, ok := domain.IdentityFromContext(ctx); ok {
		rec.ActingRole = id.Role
	}

	if err := a.writer.Append(rec); err != nil {
		a.log.Error().Err(err).Str("entity", entity).Msg("audit record dropped")
	}
}

func (a *AuditTrail) History(ctx context.Context) ([]domain.AuditRecord, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.store.ReadAll()
}
