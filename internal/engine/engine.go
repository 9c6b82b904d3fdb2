// Package engine реализует машину состояний возобновляемой загрузки: приём
// кусков, учёт прогресса, сборку готового файла и уборку брошенных сессий.
// HTTP-слой сюда не протекает — движок работает в терминах сессий и кусков.
package engine

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/upsrv/upserver/internal/chunkstore"
	"github.com/upsrv/upserver/internal/models"
)

// Catalog — приёмник записей о завершённых загрузках.
type Catalog interface {
	Save(ctx context.Context, up models.Upload) error
}

type Deps struct {
	Store            *chunkstore.Store
	Catalog          Catalog
	UploadDir        string
	DefaultChunkSize int64
	MaxFileSize      int64
}

// Engine объединяет реестр сессий, staging-хранилище и финализацию.
type Engine struct {
	Deps
	reg *registry
}

// New конструирует движок с заданными зависимостями.
func New(deps Deps) *Engine {
	return &Engine{
		Deps: deps,
		reg:  newRegistry(),
	}
}

// Create регистрирует новую сессию и заводит её staging-каталог.
func (e *Engine) Create(ctx context.Context, name string, size, chunkSize int64) (models.CreateResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CreateResult{}, fmt.Errorf("%w: file name is empty", models.ErrInvalidRequest)
	}
	if size <= 0 {
		return models.CreateResult{}, fmt.Errorf("%w: size must be positive", models.ErrInvalidRequest)
	}
	if e.MaxFileSize > 0 && size > e.MaxFileSize {
		return models.CreateResult{}, fmt.Errorf("%w: size %d exceeds limit %d", models.ErrInvalidRequest, size, e.MaxFileSize)
	}
	if chunkSize <= 0 {
		chunkSize = e.DefaultChunkSize
	}

	s := &session{
		meta: chunkstore.SessionMeta{
			Name:      name,
			Size:      size,
			ChunkSize: chunkSize,
			CreatedAt: time.Now(),
		},
		totalChunks:  chunkstore.TotalChunks(size, chunkSize),
		state:        models.SessionCreated,
		chunks:       map[int]models.Chunk{},
		lastActivity: time.Now(),
	}

	id := e.reg.insert(s)
	if err := e.Store.CreateSession(s.meta); err != nil {
		e.reg.remove(id)
		return models.CreateResult{}, err
	}

	return models.CreateResult{
		ID:          id,
		ChunkSize:   chunkSize,
		TotalChunks: s.totalChunks,
	}, nil
}

// ReceiveChunk принимает кусок index для сессии id. Повторная отправка уже
// принятого индекса в состоянии Receiving допустима: кусок перезаписывается,
// а в ответе выставляется AlreadyHad.
func (e *Engine) ReceiveChunk(ctx context.Context, id string, index int, r io.Reader, wantSha string) (models.ChunkAck, error) {
	if err := ctx.Err(); err != nil {
		return models.ChunkAck{}, err
	}

	s, ok := e.reg.get(id)
	if !ok {
		return models.ChunkAck{}, models.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.SessionCreated && s.state != models.SessionReceiving {
		return models.ChunkAck{}, fmt.Errorf("%w: state %s", models.ErrSessionClosed, s.state)
	}
	if index < 0 || index >= s.totalChunks {
		return models.ChunkAck{}, fmt.Errorf("%w: chunk index %d out of range [0,%d)", models.ErrInvalidRequest, index, s.totalChunks)
	}

	want := chunkstore.ChunkLength(s.meta.Size, s.meta.ChunkSize, index)
	_, alreadyHad := s.chunks[index]

	rec, err := e.Store.Write(id, index, r, want, wantSha)
	if err != nil {
		// Неподтверждённый кусок считается несохранённым; маска не меняется.
		return models.ChunkAck{}, err
	}

	s.chunks[index] = rec
	s.lastActivity = time.Now()
	if s.state == models.SessionCreated {
		s.state = models.SessionReceiving
	}
	if len(s.chunks) == s.totalChunks {
		s.state = models.SessionCompleted
	}

	return models.ChunkAck{
		AlreadyHad: alreadyHad,
		Received:   len(s.chunks),
		Total:      s.totalChunks,
	}, nil
}

// Status возвращает снимок прогресса сессии. Берётся только read-lock,
// поэтому опрос статуса не сериализуется с приёмом кусков.
func (e *Engine) Status(id string) (models.SessionStatus, error) {
	s, ok := e.reg.get(id)
	if !ok {
		return models.SessionStatus{}, models.ErrSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(), nil
}

// Abort прерывает сессию и удаляет её staging-каталог. Повторный Abort
// уже закрытой сессии — no-op.
func (e *Engine) Abort(ctx context.Context, id string) error {
	s, ok := e.reg.get(id)
	if !ok {
		return models.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return nil
	}

	s.state = models.SessionAborted
	// Удаление внутри критической секции: параллельная запись куска не может
	// воскресить каталог после отмены.
	if err := e.Store.DeleteSession(id); err != nil {
		return err
	}
	e.reg.remove(id)

	return nil
}

// ListActive возвращает снимки всех живых сессий, отсортированные по id.
func (e *Engine) ListActive() []models.SessionStatus {
	sessions := e.reg.list()

	out := make([]models.SessionStatus, 0, len(sessions))
	for _, s := range sessions {
		s.mu.RLock()
		out = append(out, s.statusLocked())
		s.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
