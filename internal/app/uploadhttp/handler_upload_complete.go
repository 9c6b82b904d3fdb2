package uploadhttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upsrv/upserver/pkg/httperrors"
)

// completeUpload собирает готовый файл из кусков завершённой сессии.
func (a *Server) completeUpload(w http.ResponseWriter, r *http.Request) {
	res, err := a.Engine.Finalize(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}
