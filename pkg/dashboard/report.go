package dashboard

import (
	"time"

	"trends-dashboard/pkg/render"
	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/wordcloud"
)

// Report is everything rendered for one submission.
type Report struct {
	ID          string         `json:"id"`
	Terms       trends.TermSet `json:"terms"`
	Timeframe   string         `json:"timeframe"`
	GeneratedAt time.Time      `json:"generated_at"`
	Sections    []*Section     `json:"sections"`
}

// Section is the output for a single geography.
type Section struct {
	Geo     trends.GeoScope `json:"geo"`
	Result  *trends.Result  `json:"result,omitempty"`
	Chart   *render.Chart   `json:"chart,omitempty"`
	NoData  *trends.Notice  `json:"no_data,omitempty"`
	Panels  []Panel         `json:"panels,omitempty"`
	Notices []trends.Notice `json:"notices,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Panel shows the related queries of one term.
type Panel struct {
	Term      string             `json:"term"`
	WordCloud *wordcloud.Image   `json:"word_cloud,omitempty"`
	Rising    []render.RisingRow `json:"rising"`
}

// Charts counts sections that rendered a chart.
func (r *Report) Charts() int {
	n := 0
	for _, s := range r.Sections {
		if s.Chart != nil {
			n++
		}
	}
	return n
}

// NoDataNotices counts sections that showed a "no data" notice.
func (r *Report) NoDataNotices() int {
	n := 0
	for _, s := range r.Sections {
		if s.NoData != nil {
			n++
		}
	}
	return n
}

// Failed counts sections that ended with an unhandled error.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sections {
		if s.Error != "" {
			n++
		}
	}
	return n
}
