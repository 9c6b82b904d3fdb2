package engine

import (
	"context"
	"io"

	"github.com/upsrv/upserver/internal/chunkstore"
	"github.com/upsrv/upserver/internal/models"
)

// UploadWhole принимает файл одним потоком: заводит сессию, нарезает поток на
// куски сам и сразу финализирует. Это совместимый путь для клиентов, которым
// возобновление не нужно.
func (e *Engine) UploadWhole(ctx context.Context, name string, size int64, r io.Reader) (models.FinalizeResult, error) {
	created, err := e.Create(ctx, name, size, 0)
	if err != nil {
		return models.FinalizeResult{}, err
	}

	for idx := 0; idx < created.TotalChunks; idx++ {
		if err := ctx.Err(); err != nil {
			_ = e.Abort(ctx, created.ID)
			return models.FinalizeResult{}, err
		}

		want := chunkstore.ChunkLength(size, created.ChunkSize, idx)
		limited := &io.LimitedReader{R: r, N: want}
		if _, err := e.ReceiveChunk(ctx, created.ID, idx, limited, ""); err != nil {
			_ = e.Abort(ctx, created.ID)
			return models.FinalizeResult{}, err
		}
	}

	res, err := e.Finalize(ctx, created.ID)
	if err != nil {
		_ = e.Abort(ctx, created.ID)
		return models.FinalizeResult{}, err
	}

	return res, nil
}
