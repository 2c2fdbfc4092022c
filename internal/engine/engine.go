// Package engine coordinates one computation pass:
// snapshots → classified table → indices → spreads.
package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"commodity-index-lab/internal/classification"
	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/index"
	"commodity-index-lab/internal/observability"
	"commodity-index-lab/internal/series"
	"commodity-index-lab/internal/snapshot"
	"commodity-index-lab/internal/spread"
	"commodity-index-lab/internal/storage"
)

// Engine runs synchronous computation passes over the two cache tiers. All
// derived artifacts are rebuilt in full on every pass; nothing is mutated
// incrementally.
type Engine struct {
	// Cache tiers. Observations are the expensive long-TTL tier; the
	// classification and mapping catalogs refresh on short cycles so
	// catalog edits surface without re-touching the bulk source.
	observations   *snapshot.Store[[]domain.PriceObservation]
	classification *snapshot.Store[domain.Classification]
	mappings       *snapshot.Store[[]domain.TickerMapping]

	policies    index.Policies
	base        float64
	matchPolicy domain.MatchPolicy
	logger      *log.Logger
	metrics     *observability.Metrics
	verbose     bool
}

// Options for creating an Engine.
type Options struct {
	// Required stores
	ObservationStore    storage.ObservationStore
	ClassificationStore storage.ClassificationStore
	TickerMappingStore  storage.TickerMappingStore

	// Cache TTLs per tier
	ObservationTTL    time.Duration
	ClassificationTTL time.Duration
	MappingTTL        time.Duration

	// Index construction
	BaseValue           float64
	AbsoluteLevelGroups []string
	ExcludedGroups      []string

	// Classification join behavior for unmatched series keys
	MatchPolicy domain.MatchPolicy

	// Optional
	Logger  *log.Logger
	Metrics *observability.Metrics
	Verbose bool
}

// New creates a new Engine. The snapshot stores are built here and owned by
// the engine; both tiers are explicit dependencies of every pass, never
// ambient globals.
func New(opts Options) *Engine {
	e := &Engine{
		policies:    index.NewPolicies(opts.AbsoluteLevelGroups, opts.ExcludedGroups),
		base:        opts.BaseValue,
		matchPolicy: opts.MatchPolicy,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		verbose:     opts.Verbose,
	}
	if e.base == 0 {
		e.base = domain.DefaultBaseValue
	}
	if e.matchPolicy == "" {
		e.matchPolicy = domain.MatchWarn
	}
	if e.logger == nil {
		e.logger = log.Default()
	}

	e.observations = snapshot.NewStore(opts.ObservationTTL,
		instrument(e.metrics, "observations", opts.ObservationStore.GetAll))
	e.classification = snapshot.NewStore(opts.ClassificationTTL,
		instrument(e.metrics, "classification", func(ctx context.Context) (domain.Classification, error) {
			recs, err := opts.ClassificationStore.GetAll(ctx)
			if err != nil {
				return domain.Classification{}, err
			}
			return classification.BuildMaps(recs), nil
		}))
	e.mappings = snapshot.NewStore(opts.MappingTTL,
		instrument(e.metrics, "mappings", opts.TickerMappingStore.GetAll))

	return e
}

// instrument wraps a snapshot loader with per-tier refresh counters.
func instrument[T any](m *observability.Metrics, tier string, load snapshot.LoadFunc[T]) snapshot.LoadFunc[T] {
	if m == nil {
		return load
	}
	return func(ctx context.Context) (T, error) {
		v, err := load(ctx)
		if err != nil {
			m.SnapshotErrors.WithLabelValues(tier).Inc()
			return v, err
		}
		m.SnapshotRefreshes.WithLabelValues(tier).Inc()
		return v, nil
	}
}

// Result holds every artifact of one computation pass.
type Result struct {
	Table           dataset.Table
	GroupIndices    map[string]domain.CompositeIndex
	RegionalIndices map[domain.RegionalKey]domain.CompositeIndex
	SectorIndices   map[string]domain.CompositeIndex
	Spreads         []domain.SpreadRow
	Swings          []domain.GroupSwingRow
	Unmatched       []domain.SeriesKey
}

// ResolveEntry resolves one basket entry against this pass's artifacts,
// for ad-hoc charting of a single series.
func (r *Result) ResolveEntry(entry domain.BasketEntry) (domain.CompositeIndex, error) {
	return series.Resolve(entry, r.Table, r.GroupIndices, r.RegionalIndices)
}

// ComputePass runs one full pass. startDate trims the classified table
// in-memory; the raw snapshot itself is always fetched unfiltered so
// varying windows share one cache entry.
//
// Phases:
//  1. refresh-or-reuse both cache tiers
//  2. classify the raw snapshot, filter the requested window
//  3. build group, regional, and sector indices
//  4. compute per-ticker spreads and group swings
func (e *Engine) ComputePass(ctx context.Context, startDate time.Time) (*Result, error) {
	started := time.Now()

	e.log("Phase 1: Loading snapshots...")
	cls, err := e.classification.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (classification snapshot) failed: %w", err)
	}
	obs, err := e.observations.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (observation snapshot) failed: %w", err)
	}
	mappings, err := e.mappings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (mapping snapshot) failed: %w", err)
	}
	e.log("  %d observations, %d classified items, %d mappings",
		len(obs), len(cls.Group), len(mappings))

	e.log("Phase 2: Classifying observations...")
	table, err := dataset.Classify(obs, cls, e.matchPolicy, e.logger)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (classification join) failed: %w", err)
	}
	table = table.FilterFrom(startDate)
	unmatched := table.Unmatched()
	e.log("  %d rows in window, %d unmatched keys", table.Len(), len(unmatched))

	e.log("Phase 3: Building indices...")
	result := &Result{
		Table:           table,
		GroupIndices:    index.BuildAllGroups(table, e.policies, e.base),
		RegionalIndices: index.BuildRegional(table, e.policies, e.base),
		SectorIndices:   index.BuildSectors(table, e.policies, e.base),
		Unmatched:       unmatched,
	}
	e.log("  %d group, %d regional, %d sector indices",
		len(result.GroupIndices), len(result.RegionalIndices), len(result.SectorIndices))

	e.log("Phase 4: Computing spreads...")
	calc := spread.NewCalculator(table, result.GroupIndices, result.RegionalIndices, e.base)
	result.Spreads, err = calc.Compute(mappings)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (spreads) failed: %w", err)
	}
	result.Swings = spread.SwingRows(result.GroupIndices)
	sort.Slice(result.Swings, func(i, j int) bool {
		return result.Swings[i].Group < result.Swings[j].Group
	})
	e.log("  %d spread rows, %d swing rows", len(result.Spreads), len(result.Swings))

	e.record(result, time.Since(started))
	return result, nil
}

// InvalidateCatalogs discards the short-TTL snapshots so the next pass
// reloads them, used after catalog writes.
func (e *Engine) InvalidateCatalogs() {
	e.classification.Invalidate()
	e.mappings.Invalidate()
}

func (e *Engine) record(r *Result, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.PassesTotal.WithLabelValues("ok").Inc()
	e.metrics.PassDuration.Observe(elapsed.Seconds())
	e.metrics.IndicesBuilt.WithLabelValues("group").Set(float64(len(r.GroupIndices)))
	e.metrics.IndicesBuilt.WithLabelValues("regional").Set(float64(len(r.RegionalIndices)))
	e.metrics.IndicesBuilt.WithLabelValues("sector").Set(float64(len(r.SectorIndices)))
	e.metrics.SpreadRowsEmitted.Set(float64(len(r.Spreads)))
	e.metrics.UnmatchedSeriesKeys.Set(float64(len(r.Unmatched)))
	e.metrics.ClassifiedRows.Set(float64(len(r.Table.Classified())))
}

func (e *Engine) log(format string, args ...any) {
	if e.verbose {
		e.logger.Printf(format, args...)
	}
}
