package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/upsrv/upserver/internal/models"
)

// Finalize собирает готовый файл из кусков завершённой сессии.
// Конкатенация идёт во временный файл в каталоге назначения; имя назначения
// появляется только после rename, так что неполный файл никому не виден.
func (e *Engine) Finalize(ctx context.Context, id string) (models.FinalizeResult, error) {
	s, ok := e.reg.get(id)
	if !ok {
		return models.FinalizeResult{}, models.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return models.FinalizeResult{}, fmt.Errorf("%w: state %s", models.ErrSessionClosed, s.state)
	}
	if s.state != models.SessionCompleted {
		return models.FinalizeResult{}, fmt.Errorf("%w: %d of %d chunks received",
			models.ErrIncompleteUpload, len(s.chunks), s.totalChunks)
	}

	dest, sha, err := e.assemble(ctx, s)
	if err != nil {
		// Staging остаётся на месте: finalize можно повторить без перезаливки.
		return models.FinalizeResult{}, err
	}

	s.state = models.SessionFinalized

	if e.Catalog != nil {
		up := models.Upload{
			ID:          s.meta.ID,
			Name:        s.meta.Name,
			Size:        s.meta.Size,
			TotalChunks: s.totalChunks,
			Sha256:      sha,
			FinishedAt:  time.Now(),
		}
		if err := e.Catalog.Save(ctx, up); err != nil {
			// Файл уже собран и валиден, каталог догонит на следующей записи.
			log.Printf("ENGINE catalog save %s: %v", s.meta.ID, err)
		}
	}

	if err := e.Store.DeleteSession(s.meta.ID); err != nil {
		log.Printf("ENGINE staging cleanup %s: %v", s.meta.ID, err)
	}
	e.reg.remove(s.meta.ID)

	return models.FinalizeResult{
		Name: s.meta.Name,
		Size: s.meta.Size,
		Path: dest,
	}, nil
}

// assemble склеивает куски строго по возрастанию индексов и публикует результат.
func (e *Engine) assemble(ctx context.Context, s *session) (string, string, error) {
	if err := os.MkdirAll(e.UploadDir, 0o755); err != nil {
		return "", "", fmt.Errorf("%w: create upload dir: %v", models.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(e.UploadDir, s.meta.Name+".part-*")
	if err != nil {
		return "", "", fmt.Errorf("%w: create destination temp: %v", models.ErrStorage, err)
	}
	tmpPath := tmp.Name()

	discard := func(err error) (string, string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", "", err
	}

	h := sha256.New()
	out := io.MultiWriter(tmp, h)

	var written int64
	for idx := 0; idx < s.totalChunks; idx++ {
		if err := ctx.Err(); err != nil {
			return discard(err)
		}

		rc, err := e.Store.Read(s.meta.ID, idx)
		if err != nil {
			return discard(err)
		}

		n, err := io.Copy(out, rc)
		rc.Close()
		if err != nil {
			return discard(fmt.Errorf("%w: concat chunk %d: %v", models.ErrStorage, idx, err))
		}
		written += n
	}

	if written != s.meta.Size {
		return discard(fmt.Errorf("%w: want %d bytes, assembled %d", models.ErrSizeMismatch, s.meta.Size, written))
	}

	if err := tmp.Close(); err != nil {
		return discard(fmt.Errorf("%w: close destination temp: %v", models.ErrStorage, err))
	}

	dest := filepath.Join(e.UploadDir, s.meta.Name)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return "", "", fmt.Errorf("%w: publish %s: %v", models.ErrStorage, s.meta.Name, err)
	}

	return dest, hex.EncodeToString(h.Sum(nil)), nil
}
