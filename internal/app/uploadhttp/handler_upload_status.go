package uploadhttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upsrv/upserver/pkg/httperrors"
)

// uploadStatus отдаёт снимок прогресса: принятые и недостающие индексы.
// Именно этим ответом клиент пользуется для возобновления.
func (a *Server) uploadStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.Engine.Status(chi.URLParam(r, "uploadID"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// listUploads перечисляет живые сессии на момент запроса.
func (a *Server) listUploads(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Engine.ListActive())
}
