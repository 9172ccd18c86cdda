package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/core/domain"
)

func newRecord(entity, oldValue, newValue string) domain.AuditRecord {
	return domain.AuditRecord{
		ChangedAt:  time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		ActingRole: domain.RoleFreelancer,
		EntityName: entity,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
}

func sameRecord(a, b domain.AuditRecord) bool {
	return a.ChangedAt.Equal(b.ChangedAt) &&
		a.ActingRole == b.ActingRole &&
		a.EntityName == b.EntityName &&
		a.OldValue == b.OldValue &&
		a.NewValue == b.NewValue
}

func TestFileStore_ReadAll_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "audit.dat"), zerolog.Nop())
	records, err := store.ReadAll()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d records", len(records))
	}
}

func TestFileStore_AppendThenReadAll(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "audit.dat"), zerolog.Nop())

	first := newRecord("Client", domain.AuditNoValue, "Acme")
	second := newRecord("Project", `Project{id=1, name="Site", status=PLANNED}`, domain.AuditDeleted)
	second.ActingRole = domain.RoleAdmin

	for _, r := range []domain.AuditRecord{first, second} {
		if err := store.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := store.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !sameRecord(records[0], first) || !sameRecord(records[1], second) {
		t.Fatalf("records out of order or altered: %+v", records)
	}
}

func TestFileStore_ReadAll_Idempotent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "audit.dat"), zerolog.Nop())
	if err := store.Append(newRecord("Client", "a", "b")); err != nil {
		t.Fatalf("append: %v", err)
	}

	a, err := store.ReadAll()
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	b, err := store.ReadAll()
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !sameRecord(a[i], b[i]) {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFileStore_ReadAll_CorruptedIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.dat")
	if err := os.WriteFile(path, []byte{0xc1, 0xc1, 0xc1}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path, zerolog.Nop())

	records, err := store.ReadAll()
	if err != nil {
		t.Fatalf("expected corrupted log to read as empty, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d", len(records))
	}
}

func TestFileStore_Compact_DropsCorruptTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.dat")
	store := NewFileStore(path, zerolog.Nop())
	good := newRecord("Client", domain.AuditNoValue, "Acme")
	if err := store.Append(good); err != nil {
		t.Fatalf("append: %v", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte{0xc1}); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	_ = f.Close()

	if records, _ := store.ReadAll(); len(records) != 0 {
		t.Fatalf("corrupted log should read as empty before compaction")
	}

	kept, err := store.Compact()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if kept != 1 {
		t.Fatalf("expected 1 record kept, got %d", kept)
	}

	records, err := store.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 || !sameRecord(records[0], good) {
		t.Fatalf("unexpected history after compaction: %+v", records)
	}
}

func TestFileStore_Compact_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.dat")
	store := NewFileStore(path, zerolog.Nop())
	if n, err := store.Compact(); err != nil || n != 0 {
		t.Fatalf("expected no-op, got %d, %v", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("compaction must not create the file")
	}
}
