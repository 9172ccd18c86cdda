package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubCreds struct {
	identities map[string]domain.Identity // username -> identity
	passwords  map[string]string
	err        error
	appendErr  error
	appended   []*domain.User
	hashes     []string
}

func newStubCreds() *stubCreds {
	return &stubCreds{
		identities: make(map[string]domain.Identity),
		passwords:  make(map[string]string),
	}
}

func (s *stubCreds) add(username, password string, id domain.Identity) {
	s.identities[username] = id
	s.passwords[username] = password
}

func (s *stubCreds) Authenticate(_ context.Context, username, password string) (domain.Identity, error) {
	if s.err != nil {
		return domain.Identity{}, s.err
	}
	id, ok := s.identities[username]
	if !ok || s.passwords[username] != password {
		return domain.Identity{}, domain.ErrAuthentication
	}
	return id, nil
}

func (s *stubCreds) Append(_ context.Context, u *domain.User, hash string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, u)
	s.hashes = append(s.hashes, hash)
	return nil
}

type stubUsers struct {
	byID   map[int64]*domain.User
	nextID int64
}

func newStubUsers() *stubUsers {
	return &stubUsers{byID: make(map[int64]*domain.User), nextID: 1}
}

func (r *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *u
	clone.ID = r.nextID
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUsers) FindAll(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

func (r *stubUsers) DeleteByID(_ context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type stubThrottle struct {
	blocked  bool
	err      error
	failures map[string]int
	resets   int
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int)}
}

func (t *stubThrottle) Allowed(context.Context, string) (bool, error) {
	return !t.blocked, t.err
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	delete(t.failures, username)
	t.resets++
	return nil
}

type authFixture struct {
	svc      *AuthService
	creds    *stubCreds
	users    *stubUsers
	throttle *stubThrottle
	session  *domain.Session
	audit    *recordingAudit
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		creds:    newStubCreds(),
		users:    newStubUsers(),
		throttle: newStubThrottle(),
		session:  domain.NewSession(),
		audit:    &recordingAudit{},
	}
	f.svc = NewAuthService(f.creds, f.users, f.throttle, f.session, f.audit, AuthOptions{
		JWTSecret:  "secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
	return f
}

// ---------------------------------------------------------------------------
// Login / Logout
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	f.creds.add("carol", "s3cret", domain.Identity{UserID: 7, Role: domain.RoleFreelancer})
	f.throttle.failures["carol"] = 2

	token, id, err := f.svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if id.UserID != 7 || id.Role != domain.RoleFreelancer {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if uid, ok := f.session.CurrentUserID(); !ok || uid != 7 {
		t.Fatalf("session not populated: %d %v", uid, ok)
	}
	if f.session.IsAdmin() {
		t.Fatalf("freelancer must not be admin")
	}
	if _, ok := f.throttle.failures["carol"]; ok {
		t.Fatalf("expected throttle reset after success")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != "FREELANCER" {
		t.Fatalf("unexpected role claim: %v", claims["role"])
	}
	if uid, _ := claims["uid"].(float64); uid != 7 {
		t.Fatalf("unexpected uid claim: %v", claims["uid"])
	}
	gen, _ := claims["gen"].(float64)
	if !f.session.Valid(uint64(gen)) {
		t.Fatalf("token generation %v does not match live session", claims["gen"])
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture()
	f.creds.add("carol", "s3cret", domain.Identity{UserID: 7, Role: domain.RoleFreelancer})

	_, _, errWrongPass := f.svc.Login(context.Background(), "carol", "nope")
	_, _, errUnknown := f.svc.Login(context.Background(), "nobody", "s3cret")

	if !errors.Is(errWrongPass, domain.ErrAuthentication) || !errors.Is(errUnknown, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v / %v", errWrongPass, errUnknown)
	}
	if errWrongPass.Error() != errUnknown.Error() {
		t.Fatalf("messages differ: %q vs %q", errWrongPass, errUnknown)
	}
	if f.throttle.failures["carol"] != 1 || f.throttle.failures["nobody"] != 1 {
		t.Fatalf("expected failures recorded, got %v", f.throttle.failures)
	}
	if _, ok := f.session.Current(); ok {
		t.Fatalf("session must stay logged out after failed logins")
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	f := newAuthFixture()
	f.creds.add("carol", "s3cret", domain.Identity{UserID: 7, Role: domain.RoleFreelancer})
	f.throttle.blocked = true

	if _, _, err := f.svc.Login(context.Background(), "carol", "s3cret"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleErrorFailsOpen(t *testing.T) {
	f := newAuthFixture()
	f.creds.add("carol", "s3cret", domain.Identity{UserID: 7, Role: domain.RoleFreelancer})
	f.throttle.err = errors.New("redis down")

	if _, _, err := f.svc.Login(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("expected login to proceed, got %v", err)
	}
}

func TestAuthService_Login_ConfigurationErrorPropagates(t *testing.T) {
	f := newAuthFixture()
	f.creds.err = domain.ErrConfiguration

	if _, _, err := f.svc.Login(context.Background(), "carol", "s3cret"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(f.throttle.failures) != 0 {
		t.Fatalf("configuration errors must not count as failed attempts")
	}
}

func TestAuthService_Logout_InvalidatesSession(t *testing.T) {
	f := newAuthFixture()
	f.creds.add("root", "pw", domain.Identity{UserID: 1, Role: domain.RoleAdmin})

	if _, _, err := f.svc.Login(context.Background(), "root", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	f.svc.Logout(context.Background())

	if f.session.IsAdmin() {
		t.Fatalf("expected session cleared")
	}
	if _, ok := f.session.CurrentRole(); ok {
		t.Fatalf("expected no role after logout")
	}
}

// ---------------------------------------------------------------------------
// User management
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(asAdmin(), "alice", "pass123", domain.RoleFreelancer)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if len(f.creds.appended) != 1 || f.creds.appended[0].Username != "alice" {
		t.Fatalf("expected credential append, got %+v", f.creds.appended)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(f.creds.hashes[0]), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if e := f.audit.last(); e.entity != "User" || e.oldValue != domain.AuditNoValue || e.role != domain.RoleAdmin {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	cases := []struct {
		name, username, password string
		role                     domain.Role
	}{
		{"empty username", "", "pw", domain.RoleFreelancer},
		{"empty password", "bob", "", domain.RoleFreelancer},
		{"multi-line username", "bob\nADMIN", "pw", domain.RoleFreelancer},
		{"separator username", "--", "pw", domain.RoleFreelancer},
		{"padded separator username", " -- ", "pw", domain.RoleFreelancer},
		{"unknown role", "bob", "pw", "client"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Register(asAdmin(), tc.username, tc.password, tc.role); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if len(f.creds.appended) != 0 {
		t.Fatalf("invalid input must not reach the credential store")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Register(asAdmin(), "bob", "pass", domain.RoleFreelancer); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := f.svc.Register(asAdmin(), "bob", "pass2", domain.RoleFreelancer); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(f.creds.appended) != 1 {
		t.Fatalf("duplicate must not be appended to credentials")
	}
}

func TestAuthService_Register_CredentialAppendFailureRollsBack(t *testing.T) {
	f := newAuthFixture()
	appendErr := errors.New("disk full")
	f.creds.appendErr = appendErr

	if _, err := f.svc.Register(asAdmin(), "bob", "pass", domain.RoleFreelancer); !errors.Is(err, appendErr) {
		t.Fatalf("expected append error, got %v", err)
	}
	if len(f.users.byID) != 0 {
		t.Fatalf("user row must be removed when the credential append fails, got %v", f.users.byID)
	}
	if len(f.audit.entries) != 0 {
		t.Fatalf("failed registration must not be audited, got %+v", f.audit.entries)
	}

	f.creds.appendErr = nil
	if _, err := f.svc.Register(asAdmin(), "bob", "pass", domain.RoleFreelancer); err != nil {
		t.Fatalf("retry after rollback: %v", err)
	}
	if len(f.creds.appended) != 1 {
		t.Fatalf("retry must reach the credential store")
	}
}

func TestAuthService_UserManagement_AdminOnly(t *testing.T) {
	f := newAuthFixture()
	ctx := asFreelancer(5)

	if _, err := f.svc.Register(ctx, "bob", "pw", domain.RoleFreelancer); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("register: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.ListUsers(ctx); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("list: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteUser(ctx, 3); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.ListUsers(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without identity, got %v", err)
	}
}

func TestAuthService_DeleteUser(t *testing.T) {
	f := newAuthFixture()
	f.users.byID[1] = &domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin}

	if err := f.svc.DeleteUser(asAdmin(), domain.PrimaryAdminID); !errors.Is(err, domain.ErrProtectedUser) {
		t.Fatalf("expected ErrProtectedUser, got %v", err)
	}
	if _, ok := f.users.byID[1]; !ok {
		t.Fatalf("primary admin was removed")
	}

	u, err := f.svc.Register(asAdmin(), "bob", "pw", domain.RoleFreelancer)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.svc.DeleteUser(asAdmin(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if e := f.audit.last(); e.newValue != domain.AuditDeleted {
		t.Fatalf("expected DELETED audit entry, got %+v", e)
	}
	if err := f.svc.DeleteUser(asAdmin(), u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
