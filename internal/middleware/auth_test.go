package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/service"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeAuthenticator accepts exactly one token
type fakeAuthenticator struct {
	token string
	admin *domain.AdminUser
	err   error
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*domain.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != f.token {
		return nil, service.ErrInvalidToken
	}
	return f.admin, nil
}

func newFakeAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{
		token: "valid-token",
		admin: &domain.AdminUser{ID: 7, Username: "admin", Role: domain.AdminRoleAdmin},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Feature: storefront-admin, Property: admin routes reject requests without a session
func TestProperty_AdminRoutesRejectMissingSession(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without a session token are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AdminSession(newFakeAuthenticator(), zap.NewNop())(okHandler())

			path := "/" + pathSuffix
			if path == "/" {
				path = "/api/orders"
			}

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PATCH", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront-admin, Property: unknown tokens are rejected
func TestProperty_UnknownTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any token other than the live one is rejected", prop.ForAll(
		func(token string) bool {
			handler := AdminSession(newFakeAuthenticator(), zap.NewNop())(okHandler())

			req := httptest.NewRequest("GET", "/api/orders", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "valid-token" }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAdminSession_AcceptsCookieAndBearer(t *testing.T) {
	auth := newFakeAuthenticator()

	var seen *domain.AdminUser
	handler := AdminSession(auth, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetAdmin(r.Context())
		token, _ := r.Context().Value(SessionTokenKey).(string)
		assert.Equal(t, "valid-token", token)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/orders", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), seen.ID)

	seen = nil
	req = httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), seen.ID)
}

func TestAdminSession_MalformedHeader(t *testing.T) {
	handler := AdminSession(newFakeAuthenticator(), zap.NewNop())(okHandler())

	for _, header := range []string{"valid-token", "Basic valid-token", "Bearer", "Bearer a b"} {
		req := httptest.NewRequest("GET", "/api/orders", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAdminSession_ExpiredAndBackendErrors(t *testing.T) {
	auth := newFakeAuthenticator()
	auth.err = service.ErrSessionExpired
	handler := AdminSession(auth, zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	auth.err = errors.New("redis down")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireRole(t *testing.T) {
	auth := newFakeAuthenticator()
	handler := AdminSession(auth, zap.NewNop())(RequireAdminRole(zap.NewNop())(okHandler()))

	req := httptest.NewRequest("DELETE", "/api/products/1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	auth.admin = &domain.AdminUser{ID: 8, Username: "shop", Role: domain.AdminRoleManager}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Without AdminSession in front there is no role at all
	w = httptest.NewRecorder()
	RequireRole([]string{domain.AdminRoleManager}, zap.NewNop())(okHandler()).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
