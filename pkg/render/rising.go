package render

import (
	"fmt"

	"trends-dashboard/pkg/trends"
)

// DefaultRisingLimit is how many rising queries are listed per term.
const DefaultRisingLimit = 25

// BreakoutLabel is shown instead of a percentage for breakout queries.
const BreakoutLabel = "Breakout"

// RisingRow is one displayable rising query.
type RisingRow struct {
	Query    string `json:"query"`
	Increase string `json:"increase"`
	Breakout bool   `json:"breakout"`
}

// FormatIncrease renders the increase column: the breakout marker as is,
// numbers as "<n>% increase".
func FormatIncrease(q trends.RisingQuery) string {
	if q.Breakout {
		return BreakoutLabel
	}
	return fmt.Sprintf("%d%% increase", q.Increase)
}

// RisingRows formats the first limit rising queries. limit <= 0 means
// DefaultRisingLimit.
func RisingRows(rising []trends.RisingQuery, limit int) []RisingRow {
	if limit <= 0 {
		limit = DefaultRisingLimit
	}
	if len(rising) > limit {
		rising = rising[:limit]
	}
	rows := make([]RisingRow, 0, len(rising))
	for _, q := range rising {
		rows = append(rows, RisingRow{
			Query:    q.Query,
			Increase: FormatIncrease(q),
			Breakout: q.Breakout,
		})
	}
	return rows
}
