package catalog

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/upsrv/upserver/internal/models"
)

// List возвращает записи каталога, отсортированные по имени файла.
func (s *PGStore) List(ctx context.Context) ([]models.Upload, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id", "file_name", "size", "total_chunks", "sha256", "finished_at").
		From(uploadsTable).
		OrderBy("file_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var out []models.Upload
	for rows.Next() {
		var up models.Upload
		if err := rows.Scan(&up.ID, &up.Name, &up.Size, &up.TotalChunks, &up.Sha256, &up.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		out = append(out, up)
	}

	return out, rows.Err()
}
