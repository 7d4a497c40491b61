// Package dashboard drives the fetch-and-present loop over the configured
// geographies.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"trends-dashboard/pkg/logger"
	"trends-dashboard/pkg/render"
	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/wordcloud"
)

const DefaultTimeframe = "today 12-m"

// Options configures a Dashboard.
type Options struct {
	// Geos are visited in order; the first is the nationwide scope.
	Geos         []trends.GeoScope
	Timeframe    string
	DefaultTerms []string
	RisingLimit  int
	Chart        render.ChartOptions
	// Notifier, when set, also receives every notice as it is emitted.
	Notifier trends.Notifier
}

// Dashboard runs one submission at a time against a fetcher. It holds no
// per-request state and is safe for concurrent use.
type Dashboard struct {
	fetcher *trends.Fetcher
	clouds  *wordcloud.Builder
	opts    Options
	log     *logger.Logger
}

func New(fetcher *trends.Fetcher, clouds *wordcloud.Builder, opts Options) *Dashboard {
	if opts.Timeframe == "" {
		opts.Timeframe = DefaultTimeframe
	}
	if len(opts.Geos) == 0 {
		opts.Geos = []trends.GeoScope{{Code: "US", Name: "United States"}}
	}
	if clouds == nil {
		clouds = wordcloud.NewBuilder(wordcloud.DefaultOptions())
	}
	return &Dashboard{
		fetcher: fetcher,
		clouds:  clouds,
		opts:    opts,
		log:     logger.GetLogger().WithField("component", "dashboard"),
	}
}

// Geos returns the configured geographies in display order.
func (d *Dashboard) Geos() []trends.GeoScope {
	out := make([]trends.GeoScope, len(d.opts.Geos))
	copy(out, d.opts.Geos)
	return out
}

// Run parses raw comma-separated input and builds one section per geography.
// Geographies are fetched one after another; a failing geography is recorded
// in its section and does not stop the others. ErrNoTerms is returned when
// the input holds no term.
func (d *Dashboard) Run(ctx context.Context, raw string) (*Report, error) {
	terms := trends.Union(d.opts.DefaultTerms, trends.ParseTerms(raw))
	if len(terms) == 0 {
		return nil, trends.ErrNoTerms
	}

	report := &Report{
		ID:          uuid.NewString(),
		Terms:       terms,
		Timeframe:   d.opts.Timeframe,
		GeneratedAt: time.Now().UTC(),
	}
	log := d.log.WithFields(map[string]interface{}{
		"report_id": report.ID,
		"terms":     terms.String(),
	})
	log.Info("Building dashboard")

	for _, geo := range d.opts.Geos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Sections = append(report.Sections, d.section(ctx, terms, geo, log))
	}

	log.WithFields(map[string]interface{}{
		"charts":  report.Charts(),
		"no_data": report.NoDataNotices(),
	}).Info("Dashboard built")
	return report, nil
}

func (d *Dashboard) section(ctx context.Context, terms trends.TermSet, geo trends.GeoScope, log *logger.Logger) *Section {
	sec := &Section{Geo: geo}
	notices := &trends.Notices{}
	var notifier trends.Notifier = notices
	if d.opts.Notifier != nil {
		notifier = trends.NotifierFunc(func(n trends.Notice) {
			notices.Notify(n)
			d.opts.Notifier.Notify(n)
		})
	}

	res, err := d.fetcher.WithNotifier(notifier).Fetch(ctx, terms, geo, d.opts.Timeframe)
	sec.Notices = notices.All()
	if err != nil {
		log.WithError(err).WithField("geo", geo.Code).Error("Fetching trends failed")
		sec.Error = err.Error()
		return sec
	}
	sec.Result = res

	if res.Series.Empty() {
		sec.NoData = &trends.Notice{
			Kind:    trends.NoticeNoData,
			Level:   trends.NoticeInfo,
			Geo:     geo.Code,
			Message: fmt.Sprintf("No data available for %s.", geo.Label()),
		}
	} else {
		sec.Chart = render.LineChart(res.Series, fmt.Sprintf("Interest over time: %s", geo.Label()), d.opts.Chart)
	}

	for _, term := range relatedOrder(terms, res.Related) {
		rel := res.Related[term]
		if rel == nil {
			continue
		}
		sec.Panels = append(sec.Panels, Panel{
			Term:      term,
			WordCloud: d.clouds.Build(fmt.Sprintf("Top queries: %s (%s)", term, geo.Label()), rel.Top),
			Rising:    render.RisingRows(rel.Rising, d.opts.RisingLimit),
		})
	}
	return sec
}

// relatedOrder lists terms present in related: requested terms first, in
// request order, then any extra keys the provider returned, sorted.
func relatedOrder(terms trends.TermSet, related trends.RelatedQueries) []string {
	seen := make(map[string]struct{}, len(related))
	var out []string
	for _, t := range terms {
		if _, ok := related[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	var extra []string
	for t := range related {
		if _, ok := seen[t]; !ok {
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
