// Package catalog хранит записи о завершённых загрузках: кто, какого размера
// и с какой контрольной суммой был собран. Каталог — справочная витрина для
// листинга файлов; движок загрузки от него не зависит.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const uploadsTable = "uploads"

// PGStore сохраняет каталог в Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore создаёт подключение к Postgres.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("catalog dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PGStore{
		pool: pool,
	}, nil
}

// Close освобождает подключения пула.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
