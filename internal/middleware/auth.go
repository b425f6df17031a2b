package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	AdminKey        contextKey = "admin"
	SessionTokenKey contextKey = "session_token"
)

// SessionCookieName is the cookie carrying the admin session token
const SessionCookieName = "admin_session"

// Authenticator resolves a session token to its admin
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.AdminUser, error)
}

// SessionToken extracts the admin session token from the session cookie or,
// failing that, from a Bearer authorization header
func SessionToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AdminSession rejects requests without a live admin session and stores
// the authenticated admin in the request context
func AdminSession(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := SessionToken(r)
			if !ok {
				logger.Debug("Missing admin session")
				RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			admin, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrSessionExpired):
					logger.Debug("Admin session expired")
					RespondWithError(w, http.StatusUnauthorized, "session expired")
				case errors.Is(err, service.ErrInvalidToken):
					logger.Debug("Invalid admin session token")
					RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				default:
					logger.Error("Failed to authenticate admin session", zap.Error(err))
					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, admin)
			ctx = context.WithValue(ctx, SessionTokenKey, token)

			logger.Debug("Admin authenticated",
				zap.Int64("admin_id", admin.ID),
				zap.String("role", admin.Role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin extracts the authenticated admin from request context
func GetAdmin(ctx context.Context) (*domain.AdminUser, bool) {
	admin, ok := ctx.Value(AdminKey).(*domain.AdminUser)
	return admin, ok && admin != nil
}

// GetAdminRole extracts the role of the authenticated admin
func GetAdminRole(ctx context.Context) (string, bool) {
	admin, ok := GetAdmin(ctx)
	if !ok {
		return "", false
	}
	return admin.Role, true
}
