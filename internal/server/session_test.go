package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storytime/internal/app"
	"storytime/internal/store"
	"storytime/pkg/domain"
)

func TestMiddlewareAttachesIdentityToContext(t *testing.T) {
	sessions := store.NewJWTSessionStore("test-secret", time.Minute)
	a, err := app.New(app.Config{
		Store:      store.NewMemoryStore(),
		Sessions:   sessions,
		StorageDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	s := New(Config{App: a})

	var seen domain.Identity
	handler := s.authenticated(func(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
		fromCtx, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Errorf("identity missing from request context")
		}
		if fromCtx != identity {
			t.Errorf("context identity %+v differs from handler identity %+v", fromCtx, identity)
		}
		seen = identity
		w.WriteHeader(http.StatusOK)
	})

	token, err := sessions.NewSession(domain.User{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.UserID != "user-1" || seen.Email != "a@x.com" {
		t.Fatalf("unexpected identity %+v", seen)
	}
}

func TestMiddlewareRejectsEmptyCookieValue(t *testing.T) {
	a, err := app.New(app.Config{
		Store:      store.NewMemoryStore(),
		Sessions:   store.NewJWTSessionStore("test-secret", time.Minute),
		StorageDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	s := New(Config{App: a})

	handler := s.authenticated(func(http.ResponseWriter, *http.Request, domain.Identity) {
		t.Errorf("handler must not run without a session")
	})
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: ""})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
