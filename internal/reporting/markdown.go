package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Commodity Index Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if !r.WindowStart.IsZero() {
		sb.WriteString(fmt.Sprintf("Window start: %s\n\n", r.WindowStart.Format("2006-01-02")))
	}

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Observations | %d |\n", r.DataSummary.TotalObservations))
	sb.WriteString(fmt.Sprintf("| Classified Rows | %d |\n", r.DataSummary.ClassifiedRows))
	sb.WriteString(fmt.Sprintf("| Group Indices | %d |\n", r.DataSummary.GroupCount))
	sb.WriteString(fmt.Sprintf("| Regional Indices | %d |\n", r.DataSummary.RegionalCount))
	sb.WriteString(fmt.Sprintf("| Sector Indices | %d |\n", r.DataSummary.SectorCount))
	sb.WriteString(fmt.Sprintf("| Ticker Mappings | %d |\n", r.DataSummary.MappingCount))
	if !r.DataSummary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range | %s to %s |\n",
			r.DataSummary.DateRangeStart.Format("2006-01-02"),
			r.DataSummary.DateRangeEnd.Format("2006-01-02")))
	}
	sb.WriteString("\n")

	// Commodity swings
	sb.WriteString("## Commodity Swings\n\n")
	if len(r.Swings) > 0 {
		sb.WriteString("| Group | 5D % | 10D % | 50D % | 150D % |\n")
		sb.WriteString("|-------|------|-------|-------|--------|\n")
		for _, s := range r.Swings {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f |\n",
				s.Group, s.Change5D, s.Change10D, s.Change50D, s.Change150D))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No group indices built.\n\n")
	}

	// Stock spreads
	sb.WriteString("## Stock Spreads\n\n")
	if len(r.Spreads) > 0 {
		sb.WriteString("| Ticker | 5D | 10D | 50D | 150D |\n")
		sb.WriteString("|--------|----|-----|-----|------|\n")
		for _, s := range r.Spreads {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f |\n",
				s.Ticker, s.Spread5D, s.Spread10D, s.Spread50D, s.Spread150D))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No ticker mappings cataloged.\n\n")
	}

	// Index snapshots
	writeIndexSection(&sb, "Group Indices", r.GroupIndexRows)
	writeIndexSection(&sb, "Sector Indices", r.SectorIndexRows)

	// Reconciliation
	if len(r.UnmatchedKeys) > 0 {
		sb.WriteString("## Unmatched Series Keys\n\n")
		for _, key := range r.UnmatchedKeys {
			sb.WriteString(fmt.Sprintf("- %s\n", key))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeIndexSection(sb *strings.Builder, title string, rows []IndexSummaryRow) {
	sb.WriteString("## " + title + "\n\n")
	if len(rows) == 0 {
		sb.WriteString("None built.\n\n")
		return
	}
	sb.WriteString("| Name | Points | First | Latest | Latest Value |\n")
	sb.WriteString("|------|--------|-------|--------|--------------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %.2f |\n",
			row.Name, row.Points,
			row.FirstDate.Format("2006-01-02"),
			row.LatestDate.Format("2006-01-02"),
			row.LatestValue))
	}
	sb.WriteString("\n")
}
