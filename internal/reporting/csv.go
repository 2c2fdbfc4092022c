package reporting

import (
	"fmt"
	"strings"

	"commodity-index-lab/internal/domain"
)

// RenderSpreadsCSV renders spread rows as CSV string.
func RenderSpreadsCSV(rows []domain.SpreadRow) string {
	var sb strings.Builder

	sb.WriteString("ticker,spread_5d,spread_10d,spread_50d,spread_150d\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f\n",
			r.Ticker, r.Spread5D, r.Spread10D, r.Spread50D, r.Spread150D))
	}

	return sb.String()
}

// RenderIndexCSV renders one composite index as CSV string.
func RenderIndexCSV(idx domain.CompositeIndex) string {
	var sb strings.Builder

	sb.WriteString("date,index_value\n")
	for _, p := range idx {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", p.Date.Format("2006-01-02"), p.Value))
	}

	return sb.String()
}
