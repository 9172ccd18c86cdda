package ports

import "github.com/freelancehub/tracker/internal/core/domain"

// AuditStore persists audit records in append order.
type AuditStore interface {
	Append(record domain.AuditRecord) error
	// ReadAll returns an empty slice when nothing has been written yet.
	ReadAll() ([]domain.AuditRecord, error)
}

// AuditAppender accepts records for asynchronous persistence. Append returns
// without waiting for the write.
type AuditAppender interface {
	Append(record domain.AuditRecord) error
}
