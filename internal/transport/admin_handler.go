package transport

import (
	"net/http"

	"cicli-volante/internal/middleware"
	"cicli-volante/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminHandler handles the admin session endpoints
type AdminHandler struct {
	adminService service.AdminService
	secureCookie bool
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. secureCookie marks the session
// cookie Secure, which production deployments behind TLS need.
func NewAdminHandler(adminService service.AdminService, secureCookie bool, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterRoutes registers the admin session routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, adminSession, loginLimit func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.With(loginLimit).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(adminSession).Get("/me", h.Me)
	})
}

func (h *AdminHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login handles POST /api/admin/login. The session token is set as a
// cookie and also returned in the Authorization header for API clients.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	token, admin, err := h.adminService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.String("username", req.Username), zap.Error(err))
		respondWithServiceError(w, h.logger, err, "failed to login")
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.adminService.SessionTTL().Seconds())))
	w.Header().Set("Authorization", "Bearer "+token)
	middleware.RespondWithJSON(w, http.StatusOK, admin)
}

// Logout handles POST /api/admin/logout. It succeeds with or without a
// live session.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.SessionToken(r); ok {
		if err := h.adminService.Logout(r.Context(), token); err != nil {
			h.logger.Error("Logout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
			return
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Me handles GET /api/admin/me
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.GetAdmin(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, admin)
}
