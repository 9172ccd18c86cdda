package domain

import "time"

// Placeholder values used in audit records.
const (
	AuditNoValue = "N/A"
	AuditDeleted = "DELETED"

	// Previous state of an update or delete that could not be looked up.
	AuditNotFound  = "N/A (not found)"
	AuditReadError = "N/A (read error)"
)

// AuditRecord is an immutable entry describing one change to an entity.
type AuditRecord struct {
	ChangedAt  time.Time `json:"changed_at" msgpack:"changed_at"`
	ActingRole Role      `json:"acting_role" msgpack:"acting_role"`
	EntityName string    `json:"entity_name" msgpack:"entity_name"`
	OldValue   string    `json:"old_value" msgpack:"old_value"`
	NewValue   string    `json:"new_value" msgpack:"new_value"`
}
