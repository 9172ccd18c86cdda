// Package credfile implements the credential store on a flat text file.
//
// Each user is four lines (id, username, bcrypt hash, role). Records are
// separated by a line containing exactly "--"; there is no separator before
// the first record or after the last.
package credfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freelancehub/tracker/internal/core/domain"
)

const (
	separator      = domain.CredentialSeparator
	linesPerRecord = 4
)

// Store reads and appends user credential records. Reads and appends are
// serialised so a reader never sees half of an appended record.
type Store struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger

	dummyMu sync.Mutex
	dummies map[int][]byte // bcrypt cost -> hash compared for unknown usernames
}

// NewStore returns a Store backed by the file at path. The file is not
// opened until it is needed.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path:    path,
		log:     log.With().Str("component", "credfile").Logger(),
		dummies: make(map[int][]byte),
	}
}

type record struct {
	id       int64
	username string
	hash     string
	role     domain.Role
}

// Authenticate looks up the first record with the given username and checks
// the password against its hash.
func (s *Store) Authenticate(_ context.Context, username, password string) (domain.Identity, error) {
	rec, found, err := s.find(username)
	if err != nil {
		return domain.Identity{}, err
	}
	if !found {
		// Unknown usernames pay for a comparison too, so timing does not
		// tell them apart from a wrong password.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(rec.hash), []byte(password))
		s.log.Warn().Str("username", username).Msg("authentication failed")
		return domain.Identity{}, domain.ErrAuthentication
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.hash), []byte(password)) != nil {
		s.log.Warn().Str("username", username).Msg("authentication failed")
		return domain.Identity{}, domain.ErrAuthentication
	}

	s.log.Info().Str("username", username).Str("role", string(rec.role)).Msg("user authenticated")
	return domain.Identity{UserID: rec.id, Role: rec.role}, nil
}

// dummyHash returns a hash with the same cost as like, generating it once per
// cost.
func (s *Store) dummyHash(like string) []byte {
	cost, err := bcrypt.Cost([]byte(like))
	if err != nil {
		cost = bcrypt.DefaultCost
	}

	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if h, ok := s.dummies[cost]; ok {
		return h
	}
	h, err := bcrypt.GenerateFromPassword([]byte("unknown user"), cost)
	if err != nil {
		s.log.Error().Err(err).Int("cost", cost).Msg("generate placeholder hash")
		return nil
	}
	s.dummies[cost] = h
	return h
}

// find scans the records in file order and returns the first whose username
// matches. Later duplicates are ignored. When nothing matches, the returned
// record carries the first record's hash so callers can match its cost.
func (s *Store) find(username string) (record, bool, error) {
	lines, err := s.dataLines()
	if err != nil {
		return record{}, false, err
	}
	if len(lines)%linesPerRecord != 0 {
		return record{}, false, fmt.Errorf("%w: user data file %s is corrupted", domain.ErrConfiguration, s.path)
	}

	for i := 0; i < len(lines); i += linesPerRecord {
		if lines[i+1] != username {
			continue
		}
		id, err := strconv.ParseInt(lines[i], 10, 64)
		if err != nil {
			return record{}, false, fmt.Errorf("%w: bad user id %q in %s", domain.ErrConfiguration, lines[i], s.path)
		}
		role, ok := domain.ParseRole(lines[i+3])
		if !ok {
			return record{}, false, fmt.Errorf("%w: bad role %q in %s", domain.ErrConfiguration, lines[i+3], s.path)
		}
		return record{id: id, username: lines[i+1], hash: lines[i+2], role: role}, true, nil
	}
	if len(lines) > 0 {
		return record{hash: lines[2]}, false, nil
	}
	return record{}, false, nil
}

// dataLines loads the whole file and drops the separator lines.
func (s *Store) dataLines() ([]string, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: user data file %s is missing or unreadable: %v", domain.ErrConfiguration, s.path, err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := sc.Text(); line != separator {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, s.path, err)
	}
	return lines, nil
}

// Append writes a record for user at the end of the file, creating it if
// needed. Existing content is never rewritten.
func (s *Store) Append(_ context.Context, user *domain.User, hashedPassword string) error {
	fields := []string{strconv.FormatInt(user.ID, 10), user.Username, hashedPassword, string(user.Role)}
	for _, f := range fields {
		if f == "" || f == separator || strings.ContainsAny(f, "\r\n") {
			return fmt.Errorf("%w: credential field %q cannot be stored", domain.ErrValidation, f)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var size int64
	info, err := os.Stat(s.path)
	switch {
	case err == nil:
		size = info.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	entry := strings.Join(fields, "\n")
	if size > 0 {
		entry = "\n" + separator + "\n" + entry
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	if _, err := f.WriteString(entry); err != nil {
		_ = f.Close()
		return fmt.Errorf("append user %q: %w", user.Username, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}

	s.log.Info().Str("username", user.Username).Str("path", s.path).Msg("user appended to credential file")
	return nil
}
