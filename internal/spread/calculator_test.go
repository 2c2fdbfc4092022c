package spread

import (
	"log"
	"math"
	"testing"
	"time"

	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func makeIndex(values ...float64) domain.CompositeIndex {
	idx := make(domain.CompositeIndex, len(values))
	for i, v := range values {
		idx[i] = domain.IndexPoint{Date: day(i), Value: v}
	}
	return idx
}

func rampIndex(n int, start, step float64) domain.CompositeIndex {
	idx := make(domain.CompositeIndex, n)
	for i := 0; i < n; i++ {
		idx[i] = domain.IndexPoint{Date: day(i), Value: start + step*float64(i)}
	}
	return idx
}

func emptyTable(t *testing.T) dataset.Table {
	t.Helper()
	table, err := dataset.Classify(nil, domain.Classification{}, domain.MatchDrop, log.Default())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	return table
}

func TestTrailingChanges_WindowsCountRows(t *testing.T) {
	// Exactly 6 rows: the 5-row window resolves, 10/50/150 default to 0.
	values := []float64{100, 101, 102, 103, 104, 110}

	ch := TrailingChanges(values)
	if math.Abs(ch.D5-10) > 1e-9 {
		t.Errorf("D5 = %v, want 10", ch.D5)
	}
	if ch.D10 != 0 || ch.D50 != 0 || ch.D150 != 0 {
		t.Errorf("short windows = %+v, want 0 for each window the series cannot cover", ch)
	}
}

func TestTrailingChanges_ExactBoundary(t *testing.T) {
	// n == window reports 0; n == window+1 resolves.
	five := []float64{100, 101, 102, 103, 110}
	if ch := TrailingChanges(five); ch.D5 != 0 {
		t.Errorf("D5 over 5 rows = %v, want 0", ch.D5)
	}

	six := []float64{100, 101, 102, 103, 104, 120}
	if ch := TrailingChanges(six); math.Abs(ch.D5-20) > 1e-9 {
		t.Errorf("D5 over 6 rows = %v, want 20", ch.D5)
	}
}

func TestTrailingChanges_Negative(t *testing.T) {
	values := []float64{200, 180, 170, 165, 160, 150}
	ch := TrailingChanges(values)
	if math.Abs(ch.D5-(-25)) > 1e-9 {
		t.Errorf("D5 = %v, want -25", ch.D5)
	}
}

func TestCompute_OneRowPerMapping(t *testing.T) {
	groupIndices := map[string]domain.CompositeIndex{
		"Crude": rampIndex(11, 100, 1),
	}
	calc := NewCalculator(emptyTable(t), groupIndices, nil, 100)

	mappings := []domain.TickerMapping{
		{Ticker: "VLO", Inputs: []domain.BasketEntry{{Group: "Crude"}}},
		{Ticker: "XOM", Outputs: []domain.BasketEntry{{Group: "Crude"}}},
		{Ticker: "ZZZ"}, // no baskets at all
	}

	rows, err := calc.Compute(mappings)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want one per mapping", len(rows))
	}
}

func TestCompute_SpreadIsOutputMinusInput(t *testing.T) {
	// Crude ramps 100→110 over 11 rows: 5D change is (110-105)/105.
	// Natural Gas stays flat: 0 on every window.
	groupIndices := map[string]domain.CompositeIndex{
		"Crude":       rampIndex(11, 100, 1),
		"Natural Gas": rampIndex(11, 100, 0),
	}
	calc := NewCalculator(emptyTable(t), groupIndices, nil, 100)

	rows, err := calc.Compute([]domain.TickerMapping{{
		Ticker:  "VLO",
		Inputs:  []domain.BasketEntry{{Group: "Natural Gas"}},
		Outputs: []domain.BasketEntry{{Group: "Crude"}},
	}})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	want := (110.0 - 105.0) / 105.0 * 100
	if math.Abs(rows[0].Spread5D-want) > 1e-9 {
		t.Errorf("Spread5D = %v, want %v", rows[0].Spread5D, want)
	}
	wantTen := (110.0 - 100.0) / 100.0 * 100
	if math.Abs(rows[0].Spread10D-wantTen) > 1e-9 {
		t.Errorf("Spread10D = %v, want %v", rows[0].Spread10D, wantTen)
	}
}

func TestCompute_UnresolvedSideIsZero(t *testing.T) {
	groupIndices := map[string]domain.CompositeIndex{
		"Crude": rampIndex(11, 100, 1),
	}
	calc := NewCalculator(emptyTable(t), groupIndices, nil, 100)

	rows, err := calc.Compute([]domain.TickerMapping{{
		Ticker:  "VLO",
		Inputs:  []domain.BasketEntry{{Group: "Unknown Group"}},
		Outputs: []domain.BasketEntry{{Group: "Crude"}},
	}})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// Unresolved input contributes zero; the spread is the output change.
	want := (110.0 - 105.0) / 105.0 * 100
	if math.Abs(rows[0].Spread5D-want) > 1e-9 {
		t.Errorf("Spread5D = %v, want %v", rows[0].Spread5D, want)
	}
}

func TestCompute_MultiEntryBasketAggregates(t *testing.T) {
	groupIndices := map[string]domain.CompositeIndex{
		"Crude":       makeIndex(100, 110),
		"Natural Gas": makeIndex(100, 90),
	}
	calc := NewCalculator(emptyTable(t), groupIndices, nil, 100)

	rows, err := calc.Compute([]domain.TickerMapping{{
		Ticker:  "PSX",
		Outputs: []domain.BasketEntry{{Group: "Crude"}, {Group: "Natural Gas"}},
	}})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// Two points only: every window is too short, so the basket resolves
	// but contributes zero change.
	if rows[0].Spread5D != 0 {
		t.Errorf("Spread5D = %v, want 0 for a 2-point basket", rows[0].Spread5D)
	}
}

func TestSwingRows(t *testing.T) {
	groupIndices := map[string]domain.CompositeIndex{
		"Crude":       rampIndex(6, 100, 2),
		"Natural Gas": rampIndex(6, 100, 0),
	}

	rows := SwingRows(groupIndices)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	byGroup := make(map[string]domain.GroupSwingRow, len(rows))
	for _, r := range rows {
		byGroup[r.Group] = r
	}
	if math.Abs(byGroup["Crude"].Change5D-10) > 1e-9 {
		t.Errorf("Crude 5D = %v, want 10", byGroup["Crude"].Change5D)
	}
	if byGroup["Natural Gas"].Change5D != 0 {
		t.Errorf("Natural Gas 5D = %v, want 0", byGroup["Natural Gas"].Change5D)
	}
}
