// kindred-setup initializes the database schema and optionally loads a
// family seed file through the normal write pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/directory"
	"github.com/scrypster/kindred/internal/importer"
	"github.com/scrypster/kindred/internal/kinship"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/internal/storage/postgres"
	"github.com/scrypster/kindred/internal/storage/sqlite"
)

func main() {
	seedPath := flag.String("seed", "", "Path to a YAML family seed file to import")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	log.Printf("Database initialized (%s)", cfg.Storage.Engine)

	if *seedPath == "" {
		return
	}

	f, err := os.Open(*seedPath)
	if err != nil {
		log.Fatalf("Failed to open seed file: %v", err)
	}
	defer f.Close()

	svc := kinship.NewService(store, directory.NewLocal(store, store))
	result, err := importer.New(store, svc).Run(context.Background(), f)
	if err != nil {
		log.Fatalf("Seed import failed: %v", err)
	}

	log.Printf("Seed imported: %d people, %d relationships created (%d approved, %d skipped)",
		result.PeopleCreated, result.EdgesCreated, result.EdgesApproved, result.Skipped)
}

// openStore builds the configured storage backend. Both backends apply their
// schema on open, so opening is all the setup the database needs.
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
