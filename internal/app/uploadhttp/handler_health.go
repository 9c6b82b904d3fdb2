package uploadhttp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"syscall"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK         bool  `json:"ok"`
	FreeBytes  int64 `json:"free_bytes"`
	TotalBytes int64 `json:"total_bytes"`
	UsedBytes  int64 `json:"used_bytes"`
}

// health возвращает статистику диска по каталогу загрузок: сколько занято
// файлами и staging'ом и сколько свободно на файловой системе.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	var used int64
	err := filepath.WalkDir(a.UploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		used += info.Size()

		return nil
	})

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats := healthStats{
		OK:        true,
		UsedBytes: used,
	}

	var st syscall.Statfs_t
	if err := syscall.Statfs(a.UploadDir, &st); err == nil {
		stats.TotalBytes = int64(st.Blocks) * int64(st.Bsize)
		stats.FreeBytes = int64(st.Bavail) * int64(st.Bsize)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
