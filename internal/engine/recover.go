package engine

import (
	"log"
	"time"

	"github.com/upsrv/upserver/internal/chunkstore"
	"github.com/upsrv/upserver/internal/models"
)

// Recover восстанавливает сессии из staging-каталога после рестарта процесса.
// Маска принятых кусков строится только по файлам на диске, поэтому клиент
// может запросить статус и дослать ровно недостающее. Возвращает число
// восстановленных сессий.
func (e *Engine) Recover() (int, error) {
	recovered, err := e.Store.Recover()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, rec := range recovered {
		s := &session{
			meta:        rec.Meta,
			totalChunks: chunkstore.TotalChunks(rec.Meta.Size, rec.Meta.ChunkSize),
			chunks:      rec.Chunks,
			// TTL отсчитываем от момента восстановления: mtime кусков после
			// рестарта не доверяем.
			lastActivity: time.Now(),
		}

		switch {
		case len(s.chunks) == s.totalChunks:
			s.state = models.SessionCompleted
		case len(s.chunks) > 0:
			s.state = models.SessionReceiving
		default:
			s.state = models.SessionCreated
		}

		if !e.reg.restore(s) {
			continue
		}
		count++
		log.Printf("ENGINE recovered upload %s (%s): %d/%d chunks", s.meta.ID, s.meta.Name, len(s.chunks), s.totalChunks)
	}

	return count, nil
}
