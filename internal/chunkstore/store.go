// Package chunkstore хранит куски незавершённых загрузок на локальном диске.
// Каждой сессии соответствует собственный каталог со своими chunk-файлами и
// session.json; публикация куска всегда идёт через временный файл и rename,
// поэтому наполовину записанный кусок никогда не виден читателям.
package chunkstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/upsrv/upserver/internal/models"
)

const (
	chunkFilenameFormat = "chunk_%06d"
	chunkFilenamePrefix = "chunk_"
	tmpSuffix           = ".tmp"
	sessionMetaFile     = "session.json"
)

// SessionMeta — параметры сессии, сохраняемые рядом с кусками.
// Их достаточно, чтобы восстановить сессию после рестарта процесса.
type SessionMeta struct {
	ID        string    `json:"upload_id"`
	Name      string    `json:"file_name"`
	Size      int64     `json:"size"`
	ChunkSize int64     `json:"chunk_size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store управляет staging-каталогом с кусками незавершённых загрузок.
type Store struct {
	root string
}

// New создаёт стор поверх каталога root, создавая его при необходимости.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create staging root: %v", models.ErrStorage, err)
	}
	return &Store{root: root}, nil
}

// Root возвращает staging-каталог стора.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

func (s *Store) chunkPath(sessionID string, index int) string {
	return filepath.Join(s.sessionDir(sessionID), fmt.Sprintf(chunkFilenameFormat, index))
}

// CreateSession заводит каталог сессии и публикует session.json.
func (s *Store) CreateSession(meta SessionMeta) error {
	dir := s.sessionDir(meta.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create session dir: %v", models.ErrStorage, err)
	}

	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	// Метаданные тоже публикуем атомарно, через временный файл.
	tmp := filepath.Join(dir, sessionMetaFile+tmpSuffix)
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("%w: write session meta: %v", models.ErrStorage, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, sessionMetaFile)); err != nil {
		return fmt.Errorf("%w: publish session meta: %v", models.ErrStorage, err)
	}

	return nil
}

// Write принимает поток куска, проверяет длину и контрольную сумму и атомарно
// публикует файл куска. При любой ошибке временный файл удаляется, прежний
// кусок (если был) остаётся нетронутым.
func (s *Store) Write(sessionID string, index int, r io.Reader, want int64, wantSha string) (models.Chunk, error) {
	final := s.chunkPath(sessionID, index)
	tmp := final + tmpSuffix

	f, err := os.Create(tmp)
	if err != nil {
		return models.Chunk{}, fmt.Errorf("%w: create chunk temp: %v", models.ErrStorage, err)
	}

	h := sha256.New()
	// Читаем на один байт больше ожидаемого, чтобы отличить ровно want от длинного тела.
	n, copyErr := io.Copy(io.MultiWriter(f, h), io.LimitReader(r, want+1))
	closeErr := f.Close()

	fail := func(err error) (models.Chunk, error) {
		_ = os.Remove(tmp)
		return models.Chunk{}, err
	}

	if copyErr != nil {
		return fail(fmt.Errorf("%w: write chunk %d: %v", models.ErrStorage, index, copyErr))
	}
	if closeErr != nil {
		return fail(fmt.Errorf("%w: close chunk %d: %v", models.ErrStorage, index, closeErr))
	}
	if n != want {
		return fail(fmt.Errorf("%w: chunk %d: want %d bytes, got %d", models.ErrChunkSizeMismatch, index, want, n))
	}

	got := hex.EncodeToString(h.Sum(nil))
	if wantSha != "" && !strings.EqualFold(got, wantSha) {
		return fail(fmt.Errorf("%w: chunk %d", models.ErrChunkCorrupt, index))
	}

	if err := os.Rename(tmp, final); err != nil {
		return fail(fmt.Errorf("%w: publish chunk %d: %v", models.ErrStorage, index, err))
	}

	return models.Chunk{Index: index, Size: n, Sha256: got}, nil
}

// Read открывает сохранённый кусок на чтение.
func (s *Store) Read(sessionID string, index int) (io.ReadCloser, error) {
	f, err := os.Open(s.chunkPath(sessionID, index))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: chunk %d", models.ErrSessionNotFound, index)
		}
		return nil, fmt.Errorf("%w: open chunk %d: %v", models.ErrStorage, index, err)
	}
	return f, nil
}

// Enumerate возвращает индексы сохранённых кусков по возрастанию.
// Временные файлы и посторонние имена игнорируются.
func (s *Store) Enumerate(sessionID string) ([]int, error) {
	entries, err := os.ReadDir(s.sessionDir(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}

	var indices []int
	for _, e := range entries {
		idx, ok := parseChunkName(e.Name())
		if !ok {
			continue
		}
		indices = append(indices, idx)
	}

	sort.Ints(indices)
	return indices, nil
}

// DeleteSession удаляет каталог сессии со всем содержимым.
func (s *Store) DeleteSession(sessionID string) error {
	if err := os.RemoveAll(s.sessionDir(sessionID)); err != nil {
		return fmt.Errorf("%w: delete session dir: %v", models.ErrStorage, err)
	}
	return nil
}

// parseChunkName извлекает индекс из имени chunk-файла.
func parseChunkName(name string) (int, bool) {
	if !strings.HasPrefix(name, chunkFilenamePrefix) || strings.HasSuffix(name, tmpSuffix) {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(name, chunkFilenamePrefix))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
