package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/server"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/internal/storage/postgres"
	"github.com/scrypster/kindred/internal/storage/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, _ := server.Start(ctx, cfg, store)
	log.Printf("Kindred API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		return postgres.NewStore(cfg.Storage.PostgresDSN)
	case "sqlite", "":
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlite.NewStore(cfg.Storage.DataPath + "/kindred.db")
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
	}
}
