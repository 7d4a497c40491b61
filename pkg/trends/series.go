package trends

import (
	"encoding/json"
	"math"
	"time"
)

// PartialColumn is the marker column the provider attaches to a series; 1
// flags a point whose period is still in progress.
const PartialColumn = "isPartial"

// Column is one named value column of a Series. Absent values are NaN.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Series is a time-indexed table with one column per term.
type Series struct {
	Index   []time.Time `json:"index"`
	Columns []Column    `json:"columns"`
}

// Len returns the number of rows.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Index)
}

// Empty reports whether the series has no rows, or no term column holding
// at least one present value.
func (s *Series) Empty() bool {
	if s == nil || len(s.Index) == 0 {
		return true
	}
	for _, c := range s.Columns {
		if c.Name == PartialColumn {
			continue
		}
		for _, v := range c.Values {
			if !Missing(v) {
				return false
			}
		}
	}
	return true
}

// Names returns the column names in order.
func (s *Series) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Column returns the named column.
func (s *Series) Column(name string) (Column, bool) {
	if s == nil {
		return Column{}, false
	}
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Drop returns a copy of s without the named column. The index is shared.
func (s *Series) Drop(name string) *Series {
	if s == nil {
		return nil
	}
	out := &Series{Index: s.Index, Columns: make([]Column, 0, len(s.Columns))}
	for _, c := range s.Columns {
		if c.Name == name {
			continue
		}
		out.Columns = append(out.Columns, c)
	}
	return out
}

// Missing reports whether v stands for an absent value.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// MarshalJSON encodes absent values as null.
func (c Column) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(c.Values))
	for i := range c.Values {
		if !Missing(c.Values[i]) {
			values[i] = &c.Values[i]
		}
	}
	return json.Marshal(struct {
		Name   string     `json:"name"`
		Values []*float64 `json:"values"`
	}{c.Name, values})
}
