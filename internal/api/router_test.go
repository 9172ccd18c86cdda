package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/api/ws"
	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

type nopAuth struct{}

func (nopAuth) Login(context.Context, string, string) (string, domain.Identity, error) {
	return "", domain.Identity{}, domain.ErrAuthentication
}
func (nopAuth) Logout(context.Context) {}
func (nopAuth) Register(context.Context, string, string, domain.Role) (*domain.User, error) {
	return nil, domain.ErrForbidden
}
func (nopAuth) ListUsers(context.Context) ([]*domain.User, error) {
	return nil, nil
}
func (nopAuth) DeleteUser(context.Context, int64) error {
	return nil
}

type nopClients struct{}

func (nopClients) Create(context.Context, ports.ClientInput) (*domain.Client, error) {
	return &domain.Client{ID: 1}, nil
}
func (nopClients) Update(context.Context, int64, ports.ClientInput) (*domain.Client, error) {
	return nil, domain.ErrNotFound
}
func (nopClients) Delete(context.Context, int64) error {
	return nil
}
func (nopClients) Get(context.Context, int64) (*domain.Client, error) {
	return nil, domain.ErrNotFound
}
func (nopClients) List(context.Context, ports.ListClientsFilter) ([]*domain.Client, error) {
	return nil, nil
}

type nopProjects struct{}

func (nopProjects) Create(context.Context, ports.ProjectInput) (*domain.Project, error) {
	return nil, domain.ErrValidation
}
func (nopProjects) Update(context.Context, int64, ports.ProjectInput) (*domain.Project, error) {
	return nil, domain.ErrNotFound
}
func (nopProjects) Delete(context.Context, int64) error {
	return nil
}
func (nopProjects) Get(context.Context, int64) (*domain.Project, error) {
	return nil, domain.ErrNotFound
}
func (nopProjects) List(context.Context, ports.ListProjectsFilter) ([]*domain.Project, error) {
	return nil, nil
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, string, string, string) {}
func (nopAudit) History(context.Context) ([]domain.AuditRecord, error) {
	return []domain.AuditRecord{}, nil
}

func tokenFor(t *testing.T, id domain.Identity, gen uint64) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  id.UserID,
		"role": string(id.Role),
		"gen":  gen,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

// The Prometheus middleware registers collectors globally, so the router is
// built once for all cases.
func TestRouter(t *testing.T) {
	session := domain.NewSession()
	e := NewRouter(Dependencies{
		JWTSecret: "secret",
		Session:   session,
		Auth:      nopAuth{},
		Clients:   nopClients{},
		Projects:  nopProjects{},
		Audit:     nopAudit{},
		Hub:       ws.NewHub(zerolog.Nop()),
		Log:       zerolog.Nop(),
	})

	do := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	freelancer := domain.Identity{UserID: 2, Role: domain.RoleFreelancer}
	gen := session.Login(freelancer.UserID, freelancer.Role)
	token := tokenFor(t, freelancer, gen)

	t.Run("liveness is public", func(t *testing.T) {
		if code := do(http.MethodGet, "/health", ""); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
	})
	t.Run("metrics are public", func(t *testing.T) {
		if code := do(http.MethodGet, "/metrics", ""); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
	})
	t.Run("clients need a token", func(t *testing.T) {
		if code := do(http.MethodGet, "/clients", ""); code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", code)
		}
	})
	t.Run("freelancer can list clients", func(t *testing.T) {
		if code := do(http.MethodGet, "/clients", token); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
	})
	t.Run("freelancer cannot read audit log", func(t *testing.T) {
		if code := do(http.MethodGet, "/audit", token); code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", code)
		}
	})
	t.Run("freelancer cannot manage users", func(t *testing.T) {
		if code := do(http.MethodGet, "/users", token); code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", code)
		}
	})
	t.Run("missing client maps to 404", func(t *testing.T) {
		if code := do(http.MethodGet, "/clients/9", token); code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", code)
		}
	})
	t.Run("admin reads audit log", func(t *testing.T) {
		admin := domain.Identity{UserID: 1, Role: domain.RoleAdmin}
		adminToken := tokenFor(t, admin, session.Login(admin.UserID, admin.Role))
		if code := do(http.MethodGet, "/audit", adminToken); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if code := do(http.MethodGet, "/clients", token); code != http.StatusUnauthorized {
			t.Fatalf("expected earlier token to be rejected after a new login, got %d", code)
		}
	})
}
