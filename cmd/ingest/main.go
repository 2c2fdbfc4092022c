// Package main provides the catalog and observation ingest entry point.
// Loads price observations, classification records, and ticker mappings
// from local files into the configured stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"commodity-index-lab/internal/config"
	"commodity-index-lab/internal/ingestion"
	"commodity-index-lab/internal/storage"
	chstore "commodity-index-lab/internal/storage/clickhouse"
	"commodity-index-lab/internal/storage/memory"
	"commodity-index-lab/internal/storage/migrations"
	pgstore "commodity-index-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	observationsCSV := flag.String("observations", "", "Price observation CSV file")
	classificationCSV := flag.String("classification", "", "Classification record CSV file")
	mappingsJSON := flag.String("mappings", "", "Ticker mapping JSON file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse/PostgreSQL")
	migrate := flag.Bool("migrate", true, "Run schema migrations before ingesting")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags)

	if *observationsCSV == "" && *classificationCSV == "" && *mappingsJSON == "" {
		logger.Fatal("Nothing to ingest. Use --observations, --classification, or --mappings")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling ingest...", sig)
		cancel()
	}()

	stores, cleanup, err := buildStores(ctx, cfg, *useMemory, *migrate, logger)
	if err != nil {
		logger.Fatalf("Storage error: %v", err)
	}
	defer cleanup()

	if *observationsCSV != "" {
		n, err := ingestObservations(ctx, *observationsCSV, stores.observations)
		if err != nil {
			logger.Fatalf("Observation ingest error: %v", err)
		}
		logger.Printf("Ingested %d price observations from %s", n, *observationsCSV)
	}

	if *classificationCSV != "" {
		n, err := ingestClassification(ctx, *classificationCSV, stores.classification)
		if err != nil {
			logger.Fatalf("Classification ingest error: %v", err)
		}
		logger.Printf("Replaced classification catalog with %d records from %s", n, *classificationCSV)
	}

	if *mappingsJSON != "" {
		n, err := ingestMappings(ctx, *mappingsJSON, stores.mappings)
		if err != nil {
			logger.Fatalf("Mapping ingest error: %v", err)
		}
		logger.Printf("Replaced ticker mapping catalog with %d mappings from %s", n, *mappingsJSON)
	}

	logger.Println("Ingest completed")
}

// allStores holds the three stores an ingest run writes to.
type allStores struct {
	observations   storage.ObservationStore
	classification storage.ClassificationStore
	mappings       storage.TickerMappingStore
}

func buildStores(ctx context.Context, cfg *config.Config, useMemory, migrate bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		logger.Println("Using in-memory storage")
		return &allStores{
			observations:   memory.NewObservationStore(),
			classification: memory.NewClassificationStore(),
			mappings:       memory.NewTickerMappingStore(),
		}, func() {}, nil
	}

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	cleanup := func() {
		pool.Close()
		if err := conn.Close(); err != nil {
			logger.Printf("ClickHouse close error: %v", err)
		}
	}

	if migrate {
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Println("Migrations applied")
	}

	return &allStores{
		observations:   chstore.NewObservationStore(conn),
		classification: pgstore.NewClassificationStore(pool),
		mappings:       pgstore.NewTickerMappingStore(pool),
	}, cleanup, nil
}

func ingestObservations(ctx context.Context, path string, store storage.ObservationStore) (int, error) {
	obs, err := loadFile(path, ingestion.LoadObservationsCSV)
	if err != nil {
		return 0, err
	}
	if err := store.InsertBulk(ctx, obs); err != nil {
		return 0, err
	}
	return len(obs), nil
}

func ingestClassification(ctx context.Context, path string, store storage.ClassificationStore) (int, error) {
	recs, err := loadFile(path, ingestion.LoadClassificationCSV)
	if err != nil {
		return 0, err
	}
	if err := store.ReplaceAll(ctx, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func ingestMappings(ctx context.Context, path string, store storage.TickerMappingStore) (int, error) {
	mappings, err := loadFile(path, ingestion.LoadTickerMappingsJSON)
	if err != nil {
		return 0, err
	}
	if err := store.ReplaceAll(ctx, mappings); err != nil {
		return 0, err
	}
	return len(mappings), nil
}

func loadFile[T any](path string, load func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return load(f)
}
