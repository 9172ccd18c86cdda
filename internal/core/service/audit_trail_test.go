package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/core/domain"
)

type stubAppender struct {
	records []domain.AuditRecord
	err     error
}

func (a *stubAppender) Append(rec domain.AuditRecord) error {
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, rec)
	return nil
}

type stubAuditStore struct {
	records []domain.AuditRecord
}

func (s *stubAuditStore) Append(rec domain.AuditRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *stubAuditStore) ReadAll() ([]domain.AuditRecord, error) {
	return s.records, nil
}

func TestAuditTrail_RecordStampsRoleAndTime(t *testing.T) {
	w := &stubAppender{}
	trail := NewAuditTrail(w, &stubAuditStore{}, zerolog.Nop())
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.FixedZone("X", 3600))
	trail.now = func() time.Time { return fixed }

	trail.Record(asFreelancer(3), "Client", domain.AuditNoValue, "Acme")

	if len(w.records) != 1 {
		t.Fatalf("expected one record, got %d", len(w.records))
	}
	rec := w.records[0]
	if rec.ActingRole != domain.RoleFreelancer || rec.EntityName != "Client" || rec.NewValue != "Acme" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ChangedAt.Equal(fixed) || rec.ChangedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp equal to %v, got %v", fixed, rec.ChangedAt)
	}
}

func TestAuditTrail_WriterErrorIsSwallowed(t *testing.T) {
	trail := NewAuditTrail(&stubAppender{err: errors.New("closed")}, &stubAuditStore{}, zerolog.Nop())

	// Must not panic or block.
	trail.Record(context.Background(), "Project", "a", "b")
}

func TestAuditTrail_HistoryAdminOnly(t *testing.T) {
	store := &stubAuditStore{records: []domain.AuditRecord{{EntityName: "Client"}}}
	trail := NewAuditTrail(&stubAppender{}, store, zerolog.Nop())

	if _, err := trail.History(asFreelancer(2)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, err := trail.History(asAdmin())
	if err != nil || len(got) != 1 {
		t.Fatalf("expected history, got %v %v", got, err)
	}
}
