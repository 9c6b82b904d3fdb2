package httperrors

import (
	"errors"
	"net/http"

	"github.com/upsrv/upserver/internal/models"
)

// Write транслирует ошибки движка в HTTP-статусы.
func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrChunkCorrupt):
		// Конфликт, а не 422: клиент перешлёт тот же кусок ещё раз.
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrChunkSizeMismatch), errors.Is(err, models.ErrSizeMismatch):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrIncompleteUpload):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
