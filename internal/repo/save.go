package catalog

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/upsrv/upserver/internal/models"
)

// Save записывает (или обновляет) запись о завершённой загрузке.
func (s *PGStore) Save(ctx context.Context, up models.Upload) error {
	if strings.TrimSpace(up.ID) == "" {
		return fmt.Errorf("upload id is empty")
	}

	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(uploadsTable).
		Columns("id", "file_name", "size", "total_chunks", "sha256", "finished_at").
		Values(up.ID, up.Name, up.Size, up.TotalChunks, up.Sha256, up.FinishedAt).
		Suffix(`
					ON CONFLICT (id) DO UPDATE
					SET file_name    = EXCLUDED.file_name,
						size         = EXCLUDED.size,
						total_chunks = EXCLUDED.total_chunks,
						sha256       = EXCLUDED.sha256,
						finished_at  = EXCLUDED.finished_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert sql: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec upsert: %w", err)
	}

	return nil
}
