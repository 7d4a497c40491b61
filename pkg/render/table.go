package render

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// RisingTable renders rising queries of a term as a text table.
func RisingTable(term string, rows []RisingRow) string {
	t := table.NewWriter()
	t.SetTitle("Rising queries: " + term)
	t.AppendHeader(table.Row{"#", "Query", "Increase"})
	for i, r := range rows {
		t.AppendRow(table.Row{i + 1, r.Query, r.Increase})
	}
	if len(rows) == 0 {
		t.AppendRow(table.Row{"", "no rising queries", ""})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}
