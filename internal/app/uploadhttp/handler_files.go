package uploadhttp

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/upsrv/upserver/pkg/httperrors"
	"github.com/upsrv/upserver/pkg/uploadproto"
)

// postFile принимает файл одним потоком и полностью делегирует загрузку движку.
func (a *Server) postFile(w http.ResponseWriter, r *http.Request) {
	name := sanitizeName(extractFileName(r))

	res, err := a.Engine.UploadWhole(r.Context(), name, r.ContentLength, r.Body)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// getFile отдаёт собранный файл как octet-stream.
func (a *Server) getFile(w http.ResponseWriter, r *http.Request) {
	name := sanitizeName(chi.URLParam(r, "name"))
	if name == "" {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(a.UploadDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err = io.Copy(w, f); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// listFiles перечисляет записи каталога завершённых загрузок.
func (a *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	uploads, err := a.Catalog.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(uploads)
}

// extractFileName пытается вытащить имя файла из заголовков или query-параметра.
func extractFileName(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(uploadproto.HeaderFileName)); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("filename")); v != "" {
		return v
	}
	return ""
}
