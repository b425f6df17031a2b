package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookieName)
	return nil
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: "admin", Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	cookie := sessionCookie(t, rr)
	assert.Equal(t, "admin-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, "Bearer admin-token", rr.Header().Get("Authorization"))

	var admin map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &admin))
	assert.Equal(t, "admin", admin["username"])
	assert.NotContains(t, admin, "passwordHash")
	assert.NotContains(t, admin, "PasswordHash")
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid username or password", decodeError(t, rr).Message)
	assert.Empty(t, rr.Result().Cookies())

	rr = api.do(http.MethodPost, "/api/admin/login", map[string]string{"username": "admin"}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"password"}, validationFields(t, rr))
}

func TestMeUsesCookieSession(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "manager-token"})
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var admin domain.AdminUser
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &admin))
	assert.Equal(t, "manager", admin.Username)
	assert.Equal(t, domain.AdminRoleManager, admin.Role)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/admin/me", nil, "").Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodPost, "/api/admin/logout", nil, "admin-token")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"admin-token"}, api.admins.loggedOut)

	cookie := sessionCookie(t, rr)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)

	// Without a session logout still succeeds
	rr = api.do(http.MethodPost, "/api/admin/logout", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, api.admins.loggedOut, 1)
}
