package engine

import (
	"context"
	"log"
	"math"
	"testing"
	"time"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func obs(key string, d int, price float64) domain.PriceObservation {
	return domain.PriceObservation{Key: domain.SeriesKey(key), Date: day(d), Price: price}
}

func strp(s string) *string { return &s }

// seedStores loads a small but representative dataset: two crude series
// with regions, a signed crack-spread series, an unclassified internal
// series, and one refiner ticker mapping.
func seedStores(t *testing.T) (*memory.ObservationStore, *memory.ClassificationStore, *memory.TickerMappingStore) {
	t.Helper()
	ctx := context.Background()

	obsStore := memory.NewObservationStore()
	observations := []domain.PriceObservation{
		obs("WTI", 1, 100), obs("WTI", 2, 102), obs("WTI", 3, 101),
		obs("Brent", 1, 50), obs("Brent", 2, 49), obs("Brent", 3, 50),
		obs("3:2:1 Crack", 1, -2), obs("3:2:1 Crack", 2, 3), obs("3:2:1 Crack", 3, 2.5),
		obs("Internal Series", 1, 1), obs("Internal Series", 2, 2),
	}
	if err := obsStore.InsertBulk(ctx, observations); err != nil {
		t.Fatalf("seed observations: %v", err)
	}

	clsStore := memory.NewClassificationStore()
	records := []domain.ClassificationRecord{
		{Item: "WTI", Group: "Crude", Region: strp("Americas"), Sector: "Energy"},
		{Item: "Brent", Group: "Crude", Region: strp("Europe"), Sector: "Energy"},
		{Item: "3:2:1 Crack", Group: "Crack Spread", Sector: "Refining"},
	}
	if err := clsStore.ReplaceAll(ctx, records); err != nil {
		t.Fatalf("seed classification: %v", err)
	}

	mapStore := memory.NewTickerMappingStore()
	mappings := []domain.TickerMapping{{
		Ticker:  "VLO",
		Inputs:  []domain.BasketEntry{{ItemKey: strp("WTI"), Group: "Crude", Region: strp("Americas")}},
		Outputs: []domain.BasketEntry{{Group: "Crack Spread"}},
	}}
	if err := mapStore.ReplaceAll(ctx, mappings); err != nil {
		t.Fatalf("seed mappings: %v", err)
	}

	return obsStore, clsStore, mapStore
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	obsStore, clsStore, mapStore := seedStores(t)
	return New(Options{
		ObservationStore:    obsStore,
		ClassificationStore: clsStore,
		TickerMappingStore:  mapStore,
		ObservationTTL:      time.Hour,
		ClassificationTTL:   time.Minute,
		MappingTTL:          time.Minute,
		BaseValue:           100,
		AbsoluteLevelGroups: []string{"Crack Spread"},
		MatchPolicy:         domain.MatchWarn,
		Logger:              log.Default(),
	})
}

func TestComputePass_EndToEnd(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.ComputePass(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ComputePass failed: %v", err)
	}

	// Crude: opposite day-2 moves cancel; day 3 follows the mean return.
	crude, ok := result.GroupIndices["Crude"]
	if !ok {
		t.Fatal("missing Crude group index")
	}
	if crude[0].Value != 100 {
		t.Errorf("Crude starts at %v, want 100", crude[0].Value)
	}
	if math.Abs(crude[1].Value-100) > 1e-9 {
		t.Errorf("Crude day 2 = %v, want 100", crude[1].Value)
	}
	wantDay3 := 100 * (1 + ((101.0/102.0-1)+(50.0/49.0-1))/2)
	if math.Abs(crude[2].Value-wantDay3) > 1e-9 {
		t.Errorf("Crude day 3 = %v, want %v", crude[2].Value, wantDay3)
	}

	// Crack Spread keeps the absolute level, never rebased.
	crack, ok := result.GroupIndices["Crack Spread"]
	if !ok {
		t.Fatal("missing Crack Spread index")
	}
	if math.Abs(crack[0].Value-2) > 1e-9 {
		t.Errorf("Crack Spread day 1 = %v, want 2", crack[0].Value)
	}

	// Regional sub-indices split the crude series by region.
	if len(result.RegionalIndices) != 2 {
		t.Errorf("got %d regional indices, want 2", len(result.RegionalIndices))
	}

	// Sector indices: Energy rebased, Refining stays a level.
	if _, ok := result.SectorIndices["Energy"]; !ok {
		t.Error("missing Energy sector index")
	}
	refining, ok := result.SectorIndices["Refining"]
	if !ok {
		t.Fatal("missing Refining sector index")
	}
	if math.Abs(refining[0].Value-2) > 1e-9 {
		t.Errorf("Refining day 1 = %v, want the crack level", refining[0].Value)
	}

	// One spread row per mapping, one swing row per group.
	if len(result.Spreads) != 1 || result.Spreads[0].Ticker != "VLO" {
		t.Errorf("Spreads = %+v, want one VLO row", result.Spreads)
	}
	if len(result.Swings) != 2 {
		t.Errorf("got %d swing rows, want 2", len(result.Swings))
	}

	// The internal series is reported but never indexed.
	if len(result.Unmatched) != 1 || result.Unmatched[0] != "Internal Series" {
		t.Errorf("Unmatched = %v, want [Internal Series]", result.Unmatched)
	}
	for group := range result.GroupIndices {
		if group == "" {
			t.Error("unclassified rows must not form a group index")
		}
	}
}

func TestComputePass_WindowFilter(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.ComputePass(ctx, day(2))
	if err != nil {
		t.Fatalf("ComputePass failed: %v", err)
	}

	crude, ok := result.GroupIndices["Crude"]
	if !ok {
		t.Fatal("missing Crude group index")
	}
	// Days 2-3 only: the index re-bases at the window start.
	if len(crude) != 2 {
		t.Fatalf("Crude has %d points, want 2", len(crude))
	}
	if crude[0].Value != 100 {
		t.Errorf("windowed Crude starts at %v, want 100", crude[0].Value)
	}
}

func TestComputePass_ExcludedGroup(t *testing.T) {
	obsStore, clsStore, mapStore := seedStores(t)
	eng := New(Options{
		ObservationStore:    obsStore,
		ClassificationStore: clsStore,
		TickerMappingStore:  mapStore,
		ObservationTTL:      time.Hour,
		ClassificationTTL:   time.Minute,
		MappingTTL:          time.Minute,
		BaseValue:           100,
		AbsoluteLevelGroups: []string{"Crack Spread"},
		ExcludedGroups:      []string{"Crack Spread"},
		MatchPolicy:         domain.MatchWarn,
		Logger:              log.Default(),
	})

	result, err := eng.ComputePass(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("ComputePass failed: %v", err)
	}
	if _, ok := result.GroupIndices["Crack Spread"]; ok {
		t.Error("excluded group should not produce an index")
	}
	if _, ok := result.SectorIndices["Refining"]; ok {
		t.Error("a sector fed only by an excluded group should not be built")
	}
}

func TestComputePass_FailPolicy(t *testing.T) {
	obsStore, clsStore, mapStore := seedStores(t)
	eng := New(Options{
		ObservationStore:    obsStore,
		ClassificationStore: clsStore,
		TickerMappingStore:  mapStore,
		ObservationTTL:      time.Hour,
		ClassificationTTL:   time.Minute,
		MappingTTL:          time.Minute,
		BaseValue:           100,
		MatchPolicy:         domain.MatchFail,
		Logger:              log.Default(),
	})

	if _, err := eng.ComputePass(context.Background(), time.Time{}); err == nil {
		t.Error("expected pass failure for the unclassified internal series under fail policy")
	}
}

func TestInvalidateCatalogs(t *testing.T) {
	obsStore, clsStore, mapStore := seedStores(t)
	eng := New(Options{
		ObservationStore:    obsStore,
		ClassificationStore: clsStore,
		TickerMappingStore:  mapStore,
		ObservationTTL:      time.Hour,
		ClassificationTTL:   time.Hour,
		MappingTTL:          time.Hour,
		BaseValue:           100,
		AbsoluteLevelGroups: []string{"Crack Spread"},
		MatchPolicy:         domain.MatchWarn,
		Logger:              log.Default(),
	})
	ctx := context.Background()

	if _, err := eng.ComputePass(ctx, time.Time{}); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}

	// Reclassify WTI into a new group. Within the catalog TTL the change
	// is invisible until invalidation.
	records := []domain.ClassificationRecord{
		{Item: "WTI", Group: "Light Crude", Region: strp("Americas"), Sector: "Energy"},
		{Item: "Brent", Group: "Crude", Region: strp("Europe"), Sector: "Energy"},
		{Item: "3:2:1 Crack", Group: "Crack Spread", Sector: "Refining"},
	}
	if err := clsStore.ReplaceAll(ctx, records); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	result, err := eng.ComputePass(ctx, time.Time{})
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if _, ok := result.GroupIndices["Light Crude"]; ok {
		t.Error("catalog edit surfaced before invalidation despite a live TTL")
	}

	eng.InvalidateCatalogs()
	result, err = eng.ComputePass(ctx, time.Time{})
	if err != nil {
		t.Fatalf("third pass failed: %v", err)
	}
	if _, ok := result.GroupIndices["Light Crude"]; !ok {
		t.Error("catalog edit should surface after InvalidateCatalogs")
	}
}

func TestResult_ResolveEntry(t *testing.T) {
	eng := newTestEngine(t)
	result, err := eng.ComputePass(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("ComputePass failed: %v", err)
	}

	// Item rung: raw WTI observations.
	s, err := result.ResolveEntry(domain.BasketEntry{ItemKey: strp("WTI"), Group: "Crude"})
	if err != nil {
		t.Fatalf("ResolveEntry failed: %v", err)
	}
	if len(s) != 3 || s[0].Value != 100 {
		t.Errorf("got %+v, want raw WTI observations", s)
	}

	// Group rung.
	s, err = result.ResolveEntry(domain.BasketEntry{Group: "Crude"})
	if err != nil {
		t.Fatalf("ResolveEntry failed: %v", err)
	}
	if s[0].Value != 100 {
		t.Errorf("group resolution = %+v, want the Crude index", s)
	}
}
