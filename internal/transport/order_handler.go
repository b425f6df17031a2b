package transport

import (
	"net/http"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/middleware"
	"cicli-volante/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers the order routes. Order submission is wrapped
// in submitLimit; listing and status updates need an admin session.
func (h *OrderHandler) RegisterRoutes(r chi.Router, adminSession, submitLimit func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(submitLimit).Post("/", h.Create)
		r.Get("/{ref}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminSession)
			r.Get("/", h.List)
			r.Patch("/{ref}/status", h.UpdateStatus)
		})
	})
}

// Create handles POST /api/orders and answers {orderNumber, totalAmount}
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	placeOrder(w, r, h.orderService, http.StatusCreated, h.logger)
}

// placeOrder decodes a submission, hands it to placer and writes the
// confirmation with status on success. Shared by every order backend.
func placeOrder(w http.ResponseWriter, r *http.Request, placer service.OrderPlacer, status int, logger *zap.Logger) {
	var sub domain.OrderSubmission
	if err := middleware.DecodeAndValidate(r, &sub); err != nil {
		logger.Debug("Order validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	confirmation, err := placer.PlaceOrder(r.Context(), sub)
	if err != nil {
		respondWithServiceError(w, logger, err, "failed to place order")
		return
	}

	middleware.RespondWithJSON(w, status, confirmation)
}

// Get handles GET /api/orders/{ref}, the order tracking lookup
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/orders/{ref}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var update domain.StatusUpdate
	if err := middleware.DecodeAndValidate(r, &update); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "ref"), update)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update order status")
		return
	}

	if admin, ok := middleware.GetAdmin(r.Context()); ok {
		h.logger.Info("Order status changed by admin",
			zap.String("order_number", order.OrderNumber),
			zap.String("admin", admin.Username),
		)
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
