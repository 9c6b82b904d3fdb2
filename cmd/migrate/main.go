package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/upsrv/upserver/internal/config"
	catalog "github.com/upsrv/upserver/internal/repo"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	dsn := strings.TrimSpace(cfg.CatalogDSN)
	if dsn == "" || strings.HasPrefix(dsn, "memory://") {
		log.Println("memory catalog selected, skipping migrations")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := catalog.ApplyMigrations(ctx, dsn); err != nil {
		log.Fatal(err)
	}

	log.Println("migrations applied")
}
