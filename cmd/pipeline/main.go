// Package main provides the computation pipeline entry point.
// Executes: snapshot load → classification → index construction → spreads → reporting
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"commodity-index-lab/internal/config"
	"commodity-index-lab/internal/engine"
	"commodity-index-lab/internal/ingestion"
	"commodity-index-lab/internal/observability"
	"commodity-index-lab/internal/reporting"
	"commodity-index-lab/internal/storage"
	chstore "commodity-index-lab/internal/storage/clickhouse"
	"commodity-index-lab/internal/storage/memory"
	pgstore "commodity-index-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	startDate := flag.String("start-date", "", "Window start (YYYY-MM-DD, empty for all history)")
	outputDir := flag.String("output-dir", "", "Output directory for generated files (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage loaded from fixture files")
	fixtureDir := flag.String("fixture-dir", "testdata", "Fixture directory for --use-memory")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[pipeline] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	if *outputDir == "" {
		*outputDir = cfg.Report.OutputDir
	}

	var windowStart time.Time
	if *startDate != "" {
		windowStart, err = time.Parse("2006-01-02", *startDate)
		if err != nil {
			logger.Fatalf("Invalid --start-date %q: %v", *startDate, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling pipeline...", sig)
		cancel()
	}()

	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	stores, cleanup, err := buildStores(ctx, cfg, *useMemory, *fixtureDir, logger)
	if err != nil {
		logger.Fatalf("Storage error: %v", err)
	}
	defer cleanup()

	eng := engine.New(engine.Options{
		ObservationStore:    stores.observations,
		ClassificationStore: stores.classification,
		TickerMappingStore:  stores.mappings,
		ObservationTTL:      cfg.Cache.ObservationTTL,
		ClassificationTTL:   cfg.Cache.ClassificationTTL,
		MappingTTL:          cfg.Cache.MappingTTL,
		BaseValue:           cfg.Index.BaseValue,
		AbsoluteLevelGroups: cfg.Index.AbsoluteLevelGroups,
		ExcludedGroups:      cfg.Index.ExcludedGroups,
		MatchPolicy:         cfg.MatchPolicy(),
		Logger:              logger,
		Metrics:             metrics,
		Verbose:             *verbose,
	})

	logger.Println("Running computation pass...")
	result, err := eng.ComputePass(ctx, windowStart)
	if err != nil {
		logger.Fatalf("Pass error: %v", err)
	}

	mappings, err := stores.mappings.GetAll(ctx)
	if err != nil {
		logger.Fatalf("Mapping count error: %v", err)
	}

	report := reporting.NewGenerator().Generate(result, windowStart, len(mappings))
	if err := writeOutputs(report, result, *outputDir); err != nil {
		logger.Fatalf("Report error: %v", err)
	}

	logger.Println("Pipeline completed successfully:")
	logger.Printf("  - %s/REPORT.md", *outputDir)
	logger.Printf("  - %s/stock_spreads.csv", *outputDir)
	logger.Printf("  - %d group, %d sector indices", len(report.GroupIndexRows), len(report.SectorIndexRows))
}

// allStores holds the three stores a pass reads from.
type allStores struct {
	observations   storage.ObservationStore
	classification storage.ClassificationStore
	mappings       storage.TickerMappingStore
}

func buildStores(ctx context.Context, cfg *config.Config, useMemory bool, fixtureDir string, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		logger.Printf("Using in-memory storage with fixtures from %s", fixtureDir)
		stores := &allStores{
			observations:   memory.NewObservationStore(),
			classification: memory.NewClassificationStore(),
			mappings:       memory.NewTickerMappingStore(),
		}
		if err := loadFixtures(ctx, fixtureDir, stores); err != nil {
			return nil, nil, err
		}
		return stores, func() {}, nil
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
	return &allStores{
		observations:   chstore.NewObservationStore(conn),
		classification: pgstore.NewClassificationStore(pool),
		mappings:       pgstore.NewTickerMappingStore(pool),
	}, cleanup, nil
}

// loadFixtures populates memory stores from the fixture directory.
// Missing files are skipped so partial fixture sets still run.
func loadFixtures(ctx context.Context, dir string, stores *allStores) error {
	if err := loadFixture(dir, "observations.csv", func(f *os.File) error {
		obs, err := ingestion.LoadObservationsCSV(f)
		if err != nil {
			return err
		}
		return stores.observations.InsertBulk(ctx, obs)
	}); err != nil {
		return err
	}
	if err := loadFixture(dir, "classification.csv", func(f *os.File) error {
		recs, err := ingestion.LoadClassificationCSV(f)
		if err != nil {
			return err
		}
		return stores.classification.ReplaceAll(ctx, recs)
	}); err != nil {
		return err
	}
	return loadFixture(dir, "ticker_mappings.json", func(f *os.File) error {
		mappings, err := ingestion.LoadTickerMappingsJSON(f)
		if err != nil {
			return err
		}
		return stores.mappings.ReplaceAll(ctx, mappings)
	})
}

func loadFixture(dir, name string, fn func(f *os.File) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// writeOutputs renders the report to Markdown and CSV files, plus one
// CSV per group index for downstream charting.
func writeOutputs(report *reporting.Report, result *engine.Result, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(outputDir, "REPORT.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	csv := reporting.RenderSpreadsCSV(report.Spreads)
	if err := os.WriteFile(filepath.Join(outputDir, "stock_spreads.csv"), []byte(csv), 0o644); err != nil {
		return fmt.Errorf("write spreads: %w", err)
	}
	indexDir := filepath.Join(outputDir, "indices")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	for group, idx := range result.GroupIndices {
		name := indexFileName(group)
		data := reporting.RenderIndexCSV(idx)
		if err := os.WriteFile(filepath.Join(indexDir, name), []byte(data), 0o644); err != nil {
			return fmt.Errorf("write index %s: %w", group, err)
		}
	}
	return nil
}

// indexFileName maps a group name to a filesystem-safe CSV name.
func indexFileName(group string) string {
	safe := make([]rune, 0, len(group))
	for _, r := range group {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	return string(safe) + ".csv"
}
