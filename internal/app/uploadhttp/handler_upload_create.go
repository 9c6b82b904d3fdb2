package uploadhttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/upsrv/upserver/pkg/httperrors"
)

// createUploadRequest — тело запроса на регистрацию сессии.
type createUploadRequest struct {
	FileName  string `json:"file_name"`
	Size      int64  `json:"size"`
	ChunkSize int64  `json:"chunk_size"`
}

// createUpload регистрирует сессию загрузки и отвечает её параметрами.
func (a *Server) createUpload(w http.ResponseWriter, r *http.Request) {
	var payload createUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := a.Engine.Create(r.Context(), sanitizeName(payload.FileName), payload.Size, payload.ChunkSize)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// sanitizeName отбрасывает кавычки и любые компоненты пути, оставляя голое имя
// файла. Защита от path traversal: "../../etc/passwd" превращается в "passwd".
func sanitizeName(name string) string {
	name = strings.Trim(strings.TrimSpace(name), `'"`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}
