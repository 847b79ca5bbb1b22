// Command resetdb drops the submission tables for the configured environment.
// The server recreates them on its next start.
package main

import (
	"context"
	"fmt"
	"log"

	"quill/internal/config"
	"quill/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StorageDriver != config.StoragePostgres {
		log.Fatalf("STORAGE_DRIVER is %q, nothing to reset", cfg.StorageDriver)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	for _, table := range []string{tables.Published, tables.Submissions} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Fatalf("Failed to drop %s: %v", table, err)
		}
	}

	fmt.Printf("Tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
