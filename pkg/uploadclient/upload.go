package uploadclient

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// UploadFile заливает файл на сервер: создаёт сессию и отправляет все куски
// параллельно. Возвращает итог финализации.
func (cl *Client) UploadFile(ctx context.Context, path string, chunkSize int64) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, err
	}

	sess, err := cl.Create(ctx, baseName(path), info.Size(), chunkSize)
	if err != nil {
		return Result{}, err
	}

	missing := make([]int, sess.TotalChunks)
	for i := range missing {
		missing[i] = i
	}

	if err := cl.sendChunks(ctx, sess.ID, f, info.Size(), sess.ChunkSize, missing); err != nil {
		return Result{}, err
	}

	return cl.Complete(ctx, sess.ID)
}

// Resume дозаливает прерванную сессию: спрашивает у сервера список missing и
// отправляет только недостающие куски.
func (cl *Client) Resume(ctx context.Context, uploadID, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	st, err := cl.Status(ctx, uploadID)
	if err != nil {
		return Result{}, err
	}

	info, err := f.Stat()
	if err != nil {
		return Result{}, err
	}
	if info.Size() != st.Size {
		return Result{}, fmt.Errorf("local file is %d bytes, session expects %d", info.Size(), st.Size)
	}

	if len(st.Missing) > 0 {
		if err := cl.sendChunks(ctx, uploadID, f, st.Size, st.ChunkSize, st.Missing); err != nil {
			return Result{}, err
		}
	}

	return cl.Complete(ctx, uploadID)
}

// sendChunks отправляет перечисленные куски параллельно, с ограничением числа
// одновременных PUT'ов и прогресс-баром на весь объём.
func (cl *Client) sendChunks(ctx context.Context, uploadID string, f *os.File, size, chunkSize int64, indices []int) error {
	conc := cl.Concurrency
	if conc <= 0 {
		conc = defaultConcurrency
	}

	var total int64
	for _, idx := range indices {
		total += chunkLength(size, chunkSize, idx)
	}
	meter := newMeter(fmt.Sprintf("Uploading %s (%d chunks)", baseName(f.Name()), len(indices)), total)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(conc)

	for _, idx := range indices {
		idx := idx
		eg.Go(func() error {
			length := chunkLength(size, chunkSize, idx)
			off := int64(idx) * chunkSize

			sha, err := chunkSha(f, off, length)
			if err != nil {
				return err
			}

			body := io.TeeReader(io.NewSectionReader(f, off, length), meterWriter{m: meter})
			if _, err := cl.PutChunk(egCtx, uploadID, idx, body, length, sha); err != nil {
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		meter.Fail(err)
		return err
	}

	meter.Finish()
	return nil
}

// chunkLength повторяет серверную арифметику нарезки: все куски одинаковые,
// последний получает остаток.
func chunkLength(size, chunkSize int64, index int) int64 {
	if chunkSize <= 0 {
		return 0
	}
	total := (size + chunkSize - 1) / chunkSize
	if int64(index) == total-1 {
		return size - (total-1)*chunkSize
	}
	return chunkSize
}
