package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/upsrv/upserver/internal/app/uploadhttp"
	"github.com/upsrv/upserver/internal/chunkstore"
	"github.com/upsrv/upserver/internal/config"
	"github.com/upsrv/upserver/internal/engine"
	catalog "github.com/upsrv/upserver/internal/repo"
)

const stagingDirName = ".staging"

// catalogStore объединяет обе стороны каталога, которые нужны процессу.
type catalogStore interface {
	engine.Catalog
	uploadhttp.Catalog
	Close()
}

// main инициализирует сервер загрузок и обеспечивает корректное завершение по сигналу.
func main() {
	configPath := flag.String("config", "", "path to yaml config (default ./config.yaml)")
	addr := flag.String("addr", "", "listen address, overrides config")
	uploadDir := flag.String("upload-dir", "", "directory for finished files, overrides config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Приоритет: флаги > файл конфигурации > ENV > дефолты.
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *uploadDir != "" {
		cfg.UploadDir = *uploadDir
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal(err)
	}

	cat, err := openCatalog(cfg.CatalogDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer cat.Close()

	store, err := chunkstore.New(filepath.Join(cfg.UploadDir, stagingDirName))
	if err != nil {
		log.Fatal(err)
	}

	eng := engine.New(engine.Deps{
		Store:            store,
		Catalog:          cat,
		UploadDir:        cfg.UploadDir,
		DefaultChunkSize: cfg.ChunkSize,
		MaxFileSize:      cfg.MaxFileSize,
	})

	// Восстанавливаем незавершённые сессии с диска до открытия порта.
	if n, err := eng.Recover(); err != nil {
		log.Printf("UPSERVER recover: %v", err)
	} else if n > 0 {
		log.Printf("UPSERVER recovered %d unfinished uploads", n)
	}

	stopSweeper := eng.StartSweeper(
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		time.Duration(cfg.SweepIntervalMin)*time.Minute,
	)
	defer stopSweeper()

	h := uploadhttp.New(uploadhttp.Deps{
		Engine:    eng,
		Catalog:   cat,
		UploadDir: cfg.UploadDir,
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: h}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("UPSERVER shutdown error: %v", err)
		}
	}()

	log.Printf("UPSERVER listening on %s (upload_dir=%s, chunk=%d, ttl=%dh, sweep=%dm)",
		cfg.ListenAddr, cfg.UploadDir, cfg.ChunkSize, cfg.SessionTTLHours, cfg.SweepIntervalMin)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("UPSERVER final shutdown error: %v", err)
	}
}

// openCatalog выбирает реализацию каталога по DSN: memory:// для разработки,
// postgres-DSN для постоянного хранения.
func openCatalog(dsn string) (catalogStore, error) {
	if strings.TrimSpace(dsn) == "" || strings.HasPrefix(dsn, "memory://") {
		return catalog.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return catalog.NewPGStore(ctx, dsn)
}
