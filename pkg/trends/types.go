package trends

import "context"

// GeoScope selects the regional slice a query is computed for. Code is the
// provider geo code ("US", "US-CA"); an empty code means worldwide.
type GeoScope struct {
	Code string `json:"code" mapstructure:"code"`
	Name string `json:"name" mapstructure:"name"`
}

// Label returns a display name for the scope.
func (g GeoScope) Label() string {
	switch {
	case g.Name != "":
		return g.Name
	case g.Code != "":
		return g.Code
	default:
		return "Worldwide"
	}
}

// Query is the full parameter set of one upstream request.
type Query struct {
	Terms     TermSet
	Geo       GeoScope
	Timeframe string
	// Category 0 is "all categories".
	Category int
	// Property "" is web search; "images", "news", "youtube", "froogle" select other sources.
	Property string
}

// TopQuery is a row of the "top" related-queries table.
type TopQuery struct {
	Query string `json:"query"`
	Value int    `json:"value"`
}

// RisingQuery is a row of the "rising" related-queries table. Breakout rows
// grew too much to express as a finite percentage; Increase is then whatever
// the provider reported and should not be displayed.
type RisingQuery struct {
	Query    string `json:"query"`
	Increase int    `json:"increase"`
	Breakout bool   `json:"breakout"`
}

// Related holds both related-queries tables of one term.
type Related struct {
	Top    []TopQuery    `json:"top"`
	Rising []RisingQuery `json:"rising"`
}

// RelatedQueries maps a term to its related-queries tables.
type RelatedQueries map[string]*Related

// Provider is the upstream search-trends source. Query is one logical
// request: the query parameters are set once, then interest over time and
// related queries are read under them. Implementations must be safe to call
// repeatedly with the same query and keep no per-query state.
type Provider interface {
	Query(ctx context.Context, q Query) (*Series, RelatedQueries, error)
}
