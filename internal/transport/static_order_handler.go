package transport

import (
	"net/http"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/middleware"
	"cicli-volante/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StaticOrderPath is the endpoint static deployments post orders to
const StaticOrderPath = "/send_order.php"

// StaticErrorResponse is the failure body of the stateless confirmer.
// Details lists the invalid fields when the submission failed validation.
type StaticErrorResponse struct {
	Success bool                         `json:"success"`
	Error   string                       `json:"error"`
	Details []middleware.ValidationError `json:"details,omitempty"`
}

const (
	staticInvalidMessage  = "Dati non validi"
	staticInternalMessage = "Errore durante la conferma dell'ordine"
)

// StaticOrderHandler serves the stateless order confirmer. It accepts the
// same submission as POST /api/orders and answers 200 with
// {success, orderNumber, totalAmount, paymentInfo, message}.
type StaticOrderHandler struct {
	placer service.OrderPlacer
	logger *zap.Logger
}

// NewStaticOrderHandler creates a new StaticOrderHandler
func NewStaticOrderHandler(placer service.OrderPlacer, logger *zap.Logger) *StaticOrderHandler {
	return &StaticOrderHandler{
		placer: placer,
		logger: logger,
	}
}

// RegisterRoutes registers the confirmer route
func (h *StaticOrderHandler) RegisterRoutes(r chi.Router, submitLimit func(http.Handler) http.Handler) {
	r.With(submitLimit).Post(StaticOrderPath, h.Confirm)
	r.Get(StaticOrderPath, h.MethodNotAllowed)
}

// Confirm handles POST /send_order.php
func (h *StaticOrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var sub domain.OrderSubmission
	if err := middleware.DecodeAndValidate(r, &sub); err != nil {
		h.logger.Debug("Static order rejected", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusBadRequest, StaticErrorResponse{
			Error:   staticInvalidMessage,
			Details: middleware.FormatValidationErrors(err),
		})
		return
	}

	confirmation, err := h.placer.PlaceOrder(r.Context(), sub)
	if err != nil {
		if isBadRequest(err) {
			h.logger.Debug("Static order rejected", zap.Error(err))
			middleware.RespondWithJSON(w, http.StatusBadRequest, StaticErrorResponse{Error: staticInvalidMessage})
			return
		}
		h.logger.Error("Failed to confirm order", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusInternalServerError, StaticErrorResponse{Error: staticInternalMessage})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, confirmation)
}

// MethodNotAllowed answers anything but POST on the confirmer path
func (h *StaticOrderHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	middleware.RespondWithJSON(w, http.StatusMethodNotAllowed, StaticErrorResponse{Error: "Metodo non consentito"})
}
