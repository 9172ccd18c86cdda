package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/freelancehub/tracker/internal/core/domain"
)

func contextWithRole(e *echo.Echo, rec *httptest.ResponseRecorder, role domain.Role) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(domain.ContextWithIdentity(req.Context(), domain.Identity{UserID: 3, Role: role}))
	return e.NewContext(req, rec)
}

func TestRBAC_Allows(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := contextWithRole(e, rec, domain.RoleFreelancer)

	called := false
	mw := RBAC(domain.RoleAdmin, domain.RoleFreelancer)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := contextWithRole(e, rec, domain.RoleFreelancer)

	mw := RBAC(domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_RequiresIdentity(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
