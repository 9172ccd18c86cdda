// Package auditlog persists audit records as an append-only file of msgpack
// values, one value per record, in append order.
package auditlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// FileStore is the single writer of the audit file. Every read and write
// holds the same lock, so readers never observe a partial append.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewFileStore returns a store for the file at path. A missing file is a
// normal state: it is created by the first Append.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log.With().Str("component", "auditlog").Logger()}
}

// Append adds record to the end of the file.
func (s *FileStore) Append(record domain.AuditRecord) error {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&record); err != nil {
		return fmt.Errorf("%w: encode audit record: %v", domain.ErrSerialization, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("%w: open audit log: %v", domain.ErrSerialization, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write audit log: %v", domain.ErrSerialization, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: sync audit log: %v", domain.ErrSerialization, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close audit log: %v", domain.ErrSerialization, err)
	}

	s.log.Debug().Str("entity", record.EntityName).Msg("audit record written")
	return nil
}

// ReadAll returns every record in append order. A missing file yields an
// empty history; a file that cannot be decoded also yields an empty history
// and a warning.
func (s *FileStore) ReadAll() ([]domain.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read()
	if err != nil {
		return nil, err
	}
	if d.corruption != nil {
		s.log.Warn().Err(d.corruption).Str("path", s.path).Msg("audit log is corrupted, treating it as empty")
		return []domain.AuditRecord{}, nil
	}
	return d.records, nil
}

// Compact rewrites the file with every record that can still be decoded,
// dropping an undecodable tail. The new file replaces the old one with a
// rename, so a crash mid-compaction leaves the previous file in place.
func (s *FileStore) Compact() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read()
	if err != nil {
		return 0, err
	}
	if !d.exists {
		return 0, nil
	}
	records := d.records

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".audit-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp file: %v", domain.ErrSerialization, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := msgpack.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			_ = tmp.Close()
			return 0, fmt.Errorf("%w: encode audit record: %v", domain.ErrSerialization, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("%w: write compacted log: %v", domain.ErrSerialization, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("%w: sync compacted log: %v", domain.ErrSerialization, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: close compacted log: %v", domain.ErrSerialization, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return 0, fmt.Errorf("%w: replace audit log: %v", domain.ErrSerialization, err)
	}

	ev := s.log.Info().Int("records", len(records))
	if d.corruption != nil {
		ev = ev.Str("dropped_tail", d.corruption.Error())
	}
	ev.Msg("audit log compacted")
	return len(records), nil
}

// decoded is the result of reading the file: the records decoded before the
// first failure, and that failure if there was one.
type decoded struct {
	exists     bool
	records    []domain.AuditRecord
	corruption error
}

// read decodes the whole file. The caller holds mu.
func (s *FileStore) read() (decoded, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return decoded{records: []domain.AuditRecord{}}, nil
		}
		return decoded{}, fmt.Errorf("%w: open audit log: %v", domain.ErrSerialization, err)
	}
	defer f.Close()

	d := decoded{exists: true, records: []domain.AuditRecord{}}
	dec := msgpack.NewDecoder(bufio.NewReader(f))
	for {
		var rec domain.AuditRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return d, nil
		}
		if err != nil {
			d.corruption = err
			return d, nil
		}
		rec.ChangedAt = rec.ChangedAt.UTC()
		d.records = append(d.records, rec)
	}
}
