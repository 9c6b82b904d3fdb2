package engine

import (
	"log"
	"sync"
	"time"

	"github.com/upsrv/upserver/internal/models"
)

// StartSweeper запускает периодическую уборку простаивающих сессий и
// возвращает функцию остановки.
func (e *Engine) StartSweeper(ttl, every time.Duration) func() {
	if ttl <= 0 || every <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				e.sweepOnce(ttl)
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// sweepOnce переводит в Expired сессии, простоявшие дольше ttl, и освобождает
// их staging. Лок каждой сессии берётся целиком, поэтому уборка не может
// пересечься с приёмом куска в эту же сессию.
func (e *Engine) sweepOnce(ttl time.Duration) {
	now := time.Now()
	for _, s := range e.reg.list() {
		s.mu.Lock()
		if s.state.Terminal() || now.Sub(s.lastActivity) < ttl {
			s.mu.Unlock()
			continue
		}

		s.state = models.SessionExpired
		if err := e.Store.DeleteSession(s.meta.ID); err != nil {
			log.Printf("SWEEP delete staging %s: %v", s.meta.ID, err)
		}
		e.reg.remove(s.meta.ID)
		s.mu.Unlock()

		log.Printf("SWEEP expired upload %s (%s, idle %s)", s.meta.ID, s.meta.Name, now.Sub(s.lastActivity).Truncate(time.Second))
	}
}
