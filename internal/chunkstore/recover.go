package chunkstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/upsrv/upserver/internal/models"
)

// RecoveredSession — сессия, восстановленная из staging-каталога после рестарта.
// Маска принятых кусков собрана исключительно из файлов на диске.
type RecoveredSession struct {
	Meta   SessionMeta
	Chunks map[int]models.Chunk
}

// Recover обходит staging-каталог и восстанавливает сессии по содержимому диска.
// Кусок засчитывается, только если его длина совпадает с ожидаемой для его
// индекса; файлы неправильной длины (следствие падения до rename предыдущей
// версии процесса либо постороннего вмешательства) удаляются и считаются
// непринятыми — клиент перезальёт их по списку missing.
func (s *Store) Recover() ([]RecoveredSession, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: read staging root: %v", models.ErrStorage, err)
	}

	var out []RecoveredSession
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		meta, err := s.readSessionMeta(e.Name())
		if err != nil {
			// Каталог без валидного session.json восстановить нельзя.
			continue
		}

		chunks, err := s.collectChunks(meta)
		if err != nil {
			continue
		}

		out = append(out, RecoveredSession{Meta: *meta, Chunks: chunks})
	}

	return out, nil
}

func (s *Store) readSessionMeta(sessionID string) (*SessionMeta, error) {
	b, err := os.ReadFile(filepath.Join(s.sessionDir(sessionID), sessionMetaFile))
	if err != nil {
		return nil, err
	}

	var meta SessionMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, err
	}
	if meta.ID == "" {
		meta.ID = sessionID
	}
	if meta.ID != sessionID || meta.Size <= 0 || meta.ChunkSize <= 0 {
		return nil, fmt.Errorf("inconsistent session meta for %s", sessionID)
	}

	return &meta, nil
}

// collectChunks валидирует файлы кусков по длине и строит маску принятого.
func (s *Store) collectChunks(meta *SessionMeta) (map[int]models.Chunk, error) {
	indices, err := s.Enumerate(meta.ID)
	if err != nil {
		return nil, err
	}

	total := TotalChunks(meta.Size, meta.ChunkSize)
	chunks := make(map[int]models.Chunk, len(indices))
	for _, idx := range indices {
		path := s.chunkPath(meta.ID, idx)
		if idx >= total {
			_ = os.Remove(path)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.Size() != ChunkLength(meta.Size, meta.ChunkSize, idx) {
			_ = os.Remove(path)
			continue
		}

		chunks[idx] = models.Chunk{Index: idx, Size: info.Size()}
	}

	return chunks, nil
}

// TotalChunks вычисляет число кусков для файла заданного размера.
func TotalChunks(size, chunkSize int64) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((size + chunkSize - 1) / chunkSize)
}

// ChunkLength возвращает ожидаемую длину куска с данным индексом:
// все куски одинаковые, кроме последнего — он получает остаток.
func ChunkLength(size, chunkSize int64, index int) int64 {
	total := TotalChunks(size, chunkSize)
	if index < 0 || index >= total {
		return 0
	}
	if index == total-1 {
		return size - int64(total-1)*chunkSize
	}
	return chunkSize
}
