package api

import "encoding/json"

// Widget ids handed out by the explore endpoint.
const (
	widgetTimeseries     = "TIMESERIES"
	widgetRelatedQueries = "RELATED_QUERIES"
)

// exploreRequest is the "req" parameter of the explore endpoint
type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

// exploreResponse lists the widgets the data endpoints are queried through
type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

// relatedWidgetRequest is the part of a RELATED_QUERIES widget request that
// names the term it belongs to
type relatedWidgetRequest struct {
	Restriction struct {
		ComplexKeywordsRestriction struct {
			Keyword []struct {
				Type  string `json:"type"`
				Value string `json:"value"`
			} `json:"keyword"`
		} `json:"complexKeywordsRestriction"`
	} `json:"restriction"`
}

// multilineResponse is the interest-over-time payload
type multilineResponse struct {
	Default struct {
		TimelineData []timelinePoint `json:"timelineData"`
	} `json:"default"`
}

type timelinePoint struct {
	Time      string `json:"time"`
	Value     []int  `json:"value"`
	HasData   []bool `json:"hasData"`
	IsPartial bool   `json:"isPartial"`
}

// relatedSearchesResponse is the related-queries payload: rankedList[0] is
// "top", rankedList[1] is "rising"
type relatedSearchesResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []rankedKeyword `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

type rankedKeyword struct {
	Query          string `json:"query"`
	Value          int    `json:"value"`
	FormattedValue string `json:"formattedValue"`
}
