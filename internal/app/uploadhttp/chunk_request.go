package uploadhttp

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// chunkRequest содержит распарсенные path-параметры запроса куска.
type chunkRequest struct {
	uploadID string
	idx      int
}

// requireChunkRequest валидирует path-параметры и возвращает заполненную структуру.
func (a *Server) requireChunkRequest(w http.ResponseWriter, r *http.Request) (*chunkRequest, bool) {
	req, err := newChunkRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return req, true
}

// newChunkRequest парсит идентификаторы из URL.
func newChunkRequest(r *http.Request) (*chunkRequest, error) {
	uploadID := chi.URLParam(r, "uploadID")
	idxStr := chi.URLParam(r, "idx")
	if uploadID == "" || idxStr == "" {
		return nil, fmt.Errorf("invalid path")
	}

	// Индекс куска приходит в десятичном виде, отрицательные значения запрещены.
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return nil, fmt.Errorf("invalid chunk index: %w", err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("invalid chunk index: must be non-negative")
	}

	return &chunkRequest{
		uploadID: uploadID,
		idx:      idx,
	}, nil
}
