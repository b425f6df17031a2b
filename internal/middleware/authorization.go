package middleware

import (
	"net/http"

	"cicli-volante/internal/domain"

	"go.uber.org/zap"
)

// RequireAdminRole ensures the session belongs to an admin with the admin role
func RequireAdminRole(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{domain.AdminRoleAdmin}, logger)
}

// RequireRole ensures the session belongs to one of the specified roles.
// Must run after AdminSession.
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetAdminRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				logger.Warn("Admin role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
