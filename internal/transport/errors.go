package transport

import (
	"errors"
	"net/http"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/middleware"
	"cicli-volante/internal/repository"
	"cicli-volante/internal/service"

	"go.uber.org/zap"
)

// respondWithServiceError maps service and repository errors to the error
// envelope. Unknown errors are logged and reported without their text.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, repository.ErrSlugAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrSlugAlreadyExists.Error())
	case errors.Is(err, repository.ErrCatalogReadOnly):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrCatalogReadOnly.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrSessionExpired):
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
	case isBadRequest(err):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// isBadRequest reports whether err is a business rule violation caused by
// the request content
func isBadRequest(err error) bool {
	for _, target := range []error{
		domain.ErrUnknownCategory,
		service.ErrInvalidPrice,
		service.ErrInvalidProductStatus,
		service.ErrNoItems,
		service.ErrInvalidQuantity,
		service.ErrUnknownProduct,
		service.ErrInvalidTotal,
		service.ErrInvalidPaymentMethod,
		service.ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondWithDecodeError reports a body that failed to decode or validate
func respondWithDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}
