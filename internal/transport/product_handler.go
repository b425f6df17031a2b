package transport

import (
	"net/http"
	"strconv"

	"cicli-volante/internal/middleware"
	"cicli-volante/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; writes
// need an admin session, and deletes the admin role on top.
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminSession, adminRole func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{ref}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminSession)
			r.Post("/", h.Create)
			r.Put("/{ref}", h.Update)
			r.With(adminRole).Delete("/{ref}", h.Delete)
		})
	})
}

// parseFlag reads an optional boolean query parameter
func parseFlag(r *http.Request, name string) (bool, *middleware.ValidationError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &middleware.ValidationError{Field: name, Message: "Must be true or false"}
	}
	return v, nil
}

// List handles GET /api/products?category=&featured=&bestseller=&search=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	featured, featuredErr := parseFlag(r, "featured")
	bestseller, bestsellerErr := parseFlag(r, "bestseller")

	var invalid []middleware.ValidationError
	for _, e := range []*middleware.ValidationError{featuredErr, bestsellerErr} {
		if e != nil {
			invalid = append(invalid, *e)
		}
	}
	if len(invalid) > 0 {
		middleware.RespondWithValidationErrors(w, invalid)
		return
	}

	query := service.ProductQuery{
		Category:   r.URL.Query().Get("category"),
		Featured:   featured,
		Bestseller: bestseller,
		Search:     r.URL.Query().Get("search"),
	}

	products, err := h.catalogService.ListProducts(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{ref} where ref is a slug or numeric id
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogService.GetProduct(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{ref}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), chi.URLParam(r, "ref"), input)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{ref}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteProduct(r.Context(), chi.URLParam(r, "ref")); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
