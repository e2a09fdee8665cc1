package handlers

import (
	"errors"
	"net/http"

	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/response"
	"github.com/channelone/dealreg-conflict-service/internal/domain"
)

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Transient repository failures surface as 503 so callers know to retry.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDealNotFound), errors.Is(err, domain.ErrConflictNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDealHasOpenConflicts), errors.Is(err, domain.ErrIntegrityViolation):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRepositoryUnavailable):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}
