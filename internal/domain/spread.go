package domain

// SpreadRow is the margin-spread result for one ticker mapping: output
// basket change minus input basket change per trailing window. Windows with
// insufficient history contribute 0, a deliberate default that keeps
// downstream ranking stable.
type SpreadRow struct {
	Ticker     string
	Spread5D   float64
	Spread10D  float64
	Spread50D  float64
	Spread150D float64
}

// GroupSwingRow is the trailing performance of one group composite index,
// used for the commodity swings ranking. Same windows and zero default as
// SpreadRow.
type GroupSwingRow struct {
	Group      string
	Change5D   float64
	Change10D  float64
	Change50D  float64
	Change150D float64
}
