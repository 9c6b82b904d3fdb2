package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/upsrv/upserver/internal/models"
)

// MemoryStore хранит каталог загрузок только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu      sync.RWMutex
	uploads map[string]models.Upload
}

// NewMemoryStore создаёт пустой in-memory каталог.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{uploads: map[string]models.Upload{}}
}

// Save записывает (или обновляет) запись о завершённой загрузке.
func (s *MemoryStore) Save(_ context.Context, up models.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[up.ID] = up
	return nil
}

// List возвращает записи каталога, отсортированные по имени файла.
func (s *MemoryStore) List(_ context.Context) ([]models.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Upload, 0, len(s.uploads))
	for _, up := range s.uploads {
		out = append(out, up)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close ничего не освобождает; метод есть для симметрии с PGStore.
func (s *MemoryStore) Close() {}
