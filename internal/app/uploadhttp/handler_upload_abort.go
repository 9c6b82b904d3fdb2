package uploadhttp

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upsrv/upserver/internal/models"
	"github.com/upsrv/upserver/pkg/httperrors"
)

// abortUpload отменяет сессию. Незнакомый id не ошибка: сессия могла быть
// уже убрана по TTL, клиенту всё равно нечего делать дальше.
func (a *Server) abortUpload(w http.ResponseWriter, r *http.Request) {
	err := a.Engine.Abort(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		httperrors.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
