package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upsrv/upserver/internal/chunkstore"
	"github.com/upsrv/upserver/internal/models"
)

// session — одна живая сессия загрузки. Все изменения состояния выполняются
// под mu (write-lock); Status обходится read-lock'ом, поэтому опрос прогресса
// не задерживает приём кусков.
type session struct {
	mu sync.RWMutex

	meta         chunkstore.SessionMeta
	totalChunks  int
	state        models.SessionState
	chunks       map[int]models.Chunk
	lastActivity time.Time
}

// statusLocked собирает снимок состояния; вызывается под любым из захватов mu.
func (s *session) statusLocked() models.SessionStatus {
	st := models.SessionStatus{
		ID:          s.meta.ID,
		Name:        s.meta.Name,
		Size:        s.meta.Size,
		ChunkSize:   s.meta.ChunkSize,
		TotalChunks: s.totalChunks,
		State:       s.state,
		Received:    make([]int, 0, len(s.chunks)),
		Missing:     make([]int, 0, s.totalChunks-len(s.chunks)),
	}

	for idx := 0; idx < s.totalChunks; idx++ {
		if _, ok := s.chunks[idx]; ok {
			st.Received = append(st.Received, idx)
		} else {
			st.Missing = append(st.Missing, idx)
		}
	}

	return st
}

// registry владеет набором живых сессий процесса. Его собственный лок узкий и
// держится только на время операций над map — он никогда не пересекается с
// per-session локами, поэтому загрузки в разные сессии друг друга не тормозят.
type registry struct {
	mu    sync.RWMutex
	items map[string]*session
}

func newRegistry() *registry {
	return &registry{items: map[string]*session{}}
}

// insert добавляет сессию под свежесгенерированным id.
// При коллизии uuid генерируется заново.
func (r *registry) insert(s *session) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id := uuid.NewString()
		if _, exists := r.items[id]; exists {
			continue
		}
		s.meta.ID = id
		r.items[id] = s
		return id
	}
}

// restore регистрирует восстановленную сессию под её прежним id.
func (r *registry) restore(s *session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[s.meta.ID]; exists {
		return false
	}
	r.items[s.meta.ID] = s
	return true
}

func (r *registry) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	return s, ok
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// list возвращает снимок живых сессий на момент вызова.
func (r *registry) list() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*session, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	return out
}
