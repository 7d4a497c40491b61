// Package trendstest provides an in-memory trends.Provider for tests.
package trendstest

import (
	"context"
	"sync"
	"time"

	"trends-dashboard/pkg/trends"
)

// AlwaysRateLimited makes the provider throttle every call.
const AlwaysRateLimited = -1

// Provider serves canned data keyed by geo code.
type Provider struct {
	mu sync.Mutex

	// RateLimits is how many calls to Query fail with
	// trends.ErrRateLimited before data is served. AlwaysRateLimited never
	// stops.
	RateLimits int
	Series     map[string]*trends.Series
	Related    map[string]trends.RelatedQueries
	Errors     map[string]error

	calls   int
	queries []trends.Query
}

// New returns an empty provider: every geo yields an empty series.
func New() *Provider {
	return &Provider{
		Series:  map[string]*trends.Series{},
		Related: map[string]trends.RelatedQueries{},
		Errors:  map[string]error{},
	}
}

func (p *Provider) Query(ctx context.Context, q trends.Query) (*trends.Series, trends.RelatedQueries, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.queries = append(p.queries, q)
	if p.RateLimits == AlwaysRateLimited {
		return nil, nil, trends.ErrRateLimited
	}
	if p.RateLimits > 0 {
		p.RateLimits--
		return nil, nil, trends.ErrRateLimited
	}
	if err := p.Errors[q.Geo.Code]; err != nil {
		return nil, nil, err
	}

	series, ok := p.Series[q.Geo.Code]
	if !ok {
		series = &trends.Series{}
	}
	related, ok := p.Related[q.Geo.Code]
	if !ok {
		related = trends.RelatedQueries{}
	}
	return series, related, nil
}

// Calls returns how many queries were made.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Queries returns the queries seen so far.
func (p *Provider) Queries() []trends.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]trends.Query, len(p.queries))
	copy(out, p.queries)
	return out
}

// MonthlySeries builds a series of months points per term starting at start,
// with the provider's partial marker column attached. The last point is
// flagged partial.
func MonthlySeries(terms []string, months int, start time.Time) *trends.Series {
	s := &trends.Series{Index: make([]time.Time, months)}
	for i := 0; i < months; i++ {
		s.Index[i] = start.AddDate(0, i, 0)
	}
	for n, term := range terms {
		values := make([]float64, months)
		for i := range values {
			values[i] = float64((i*7 + n*13) % 101)
		}
		s.Columns = append(s.Columns, trends.Column{Name: term, Values: values})
	}
	partial := make([]float64, months)
	if months > 0 {
		partial[months-1] = 1
	}
	s.Columns = append(s.Columns, trends.Column{Name: trends.PartialColumn, Values: partial})
	return s
}
