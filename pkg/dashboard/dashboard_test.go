package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/trends/trendstest"
	"trends-dashboard/pkg/wordcloud"
)

var (
	testGeos = []trends.GeoScope{
		{Code: "US", Name: "United States"},
		{Code: "US-CA", Name: "California"},
		{Code: "US-NY", Name: "New York"},
	}
	fastRetry = trends.RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond}
	jan2024   = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func newTestDashboard(p trends.Provider, opts Options) *Dashboard {
	if opts.Geos == nil {
		opts.Geos = testGeos
	}
	return New(trends.NewFetcher(p, fastRetry), wordcloud.NewBuilder(wordcloud.Options{}), opts)
}

func TestRun_OneChartTwoNoDataNotices(t *testing.T) {
	provider := trendstest.New()
	provider.Series["US"] = trendstest.MonthlySeries([]string{"cats", "dogs"}, 12, jan2024)

	report, err := newTestDashboard(provider, Options{}).Run(context.Background(), "cats, dogs")
	require.NoError(t, err)

	assert.Equal(t, trends.TermSet{"cats", "dogs"}, report.Terms)
	require.Len(t, report.Sections, 3)
	assert.Equal(t, 1, report.Charts())
	assert.Equal(t, 2, report.NoDataNotices())

	us := report.Sections[0]
	require.NotNil(t, us.Chart)
	assert.Equal(t, []string{"cats", "dogs"}, us.Chart.Terms)
	assert.Equal(t, 12, us.Chart.Points)
	assert.Nil(t, us.NoData)

	for i, code := range []string{"US-CA", "US-NY"} {
		sec := report.Sections[i+1]
		assert.Equal(t, code, sec.Geo.Code)
		assert.Nil(t, sec.Chart)
		require.NotNil(t, sec.NoData)
		assert.Equal(t, trends.NoticeNoData, sec.NoData.Kind)
	}

	queries := provider.Queries()
	require.Len(t, queries, 3)
	for i, q := range queries {
		assert.Equal(t, testGeos[i], q.Geo, "geographies are fetched in declared order")
	}
}

func TestRun_PanelsFollowTermOrder(t *testing.T) {
	provider := trendstest.New()
	provider.Series["US"] = trendstest.MonthlySeries([]string{"cats", "dogs"}, 12, jan2024)
	provider.Related["US"] = trends.RelatedQueries{
		"dogs": {
			Top: []trends.TopQuery{{Query: "dog food", Value: 100}},
		},
		"cats": {
			Top: []trends.TopQuery{{Query: "cat food", Value: 100}, {Query: "cat toys", Value: 50}},
			Rising: []trends.RisingQuery{
				{Query: "cat meme", Increase: 4350, Breakout: true},
				{Query: "cat hotel", Increase: 250},
			},
		},
	}

	report, err := newTestDashboard(provider, Options{Geos: testGeos[:1]}).Run(context.Background(), "cats,dogs")
	require.NoError(t, err)

	panels := report.Sections[0].Panels
	require.Len(t, panels, 2)
	assert.Equal(t, "cats", panels[0].Term)
	assert.Equal(t, "dogs", panels[1].Term)

	require.NotNil(t, panels[0].WordCloud)
	require.Len(t, panels[0].Rising, 2)
	assert.Equal(t, "Breakout", panels[0].Rising[0].Increase)
	assert.Equal(t, "250% increase", panels[0].Rising[1].Increase)
	assert.Empty(t, panels[1].Rising)
}

func TestRun_GeographyFailureIsIsolated(t *testing.T) {
	provider := trendstest.New()
	provider.Errors["US-CA"] = errors.New("connection reset by peer")
	provider.Series["US-NY"] = trendstest.MonthlySeries([]string{"cats"}, 6, jan2024)

	report, err := newTestDashboard(provider, Options{}).Run(context.Background(), "cats")
	require.NoError(t, err)

	require.Len(t, report.Sections, 3)
	assert.Equal(t, 1, report.Failed())
	assert.Contains(t, report.Sections[1].Error, "connection reset by peer")
	assert.NotNil(t, report.Sections[2].Chart, "later geographies still render")
}

func TestRun_RateLimitExhaustedShowsNotices(t *testing.T) {
	provider := trendstest.New()
	provider.RateLimits = trendstest.AlwaysRateLimited

	report, err := newTestDashboard(provider, Options{Geos: testGeos[:1]}).Run(context.Background(), "cats")
	require.NoError(t, err)

	sec := report.Sections[0]
	assert.True(t, sec.Result.Exhausted)
	assert.NotNil(t, sec.NoData)

	failures := 0
	for _, n := range sec.Notices {
		if n.Kind == trends.NoticeFailure {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestRun_DefaultTermsAreUnioned(t *testing.T) {
	provider := trendstest.New()
	d := newTestDashboard(provider, Options{Geos: testGeos[:1], DefaultTerms: []string{"Python"}})

	report, err := d.Run(context.Background(), "python, golang")
	require.NoError(t, err)
	assert.Equal(t, trends.TermSet{"Python", "golang"}, report.Terms)
}

func TestRun_NoTerms(t *testing.T) {
	_, err := newTestDashboard(trendstest.New(), Options{}).Run(context.Background(), " , ")
	assert.ErrorIs(t, err, trends.ErrNoTerms)
}

func TestWriteHTML(t *testing.T) {
	provider := trendstest.New()
	provider.Series["US"] = trendstest.MonthlySeries([]string{"cats"}, 12, jan2024)
	provider.Related["US"] = trends.RelatedQueries{
		"cats": {
			Top:    []trends.TopQuery{{Query: "cat food", Value: 100}},
			Rising: []trends.RisingQuery{{Query: "cat <meme>", Breakout: true}},
		},
	}

	report, err := newTestDashboard(provider, Options{}).Run(context.Background(), "cats")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "cats", report))
	page := buf.String()

	assert.Contains(t, page, "United States")
	assert.Contains(t, page, "No data available for California.")
	assert.Contains(t, page, "<iframe srcdoc=")
	assert.Contains(t, page, "cat &lt;meme&gt;")
	assert.Contains(t, page, `class="breakout"`)
}

func TestWriteHTML_FormOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "", nil))
	assert.Contains(t, buf.String(), `name="terms"`)
	assert.NotContains(t, buf.String(), "<section>")
}

func TestWriteFormError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFormError(&buf, " , ", "Please enter <a> term."))
	page := buf.String()
	assert.Contains(t, page, `class="notice error"`)
	assert.Contains(t, page, "Please enter &lt;a&gt; term.")
	assert.NotContains(t, page, "<section>")
}

func TestReportJSON(t *testing.T) {
	provider := trendstest.New()
	series := trendstest.MonthlySeries([]string{"cats"}, 3, jan2024)
	provider.Series["US"] = series

	report, err := newTestDashboard(provider, Options{Geos: testGeos[:1]}).Run(context.Background(), "cats")
	require.NoError(t, err)

	b, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"cats"`)
	assert.NotContains(t, string(b), trends.PartialColumn)
}

func TestRun_LiveNotifier(t *testing.T) {
	provider := trendstest.New()
	provider.RateLimits = 2

	live := &trends.Notices{}
	d := newTestDashboard(provider, Options{Geos: testGeos[:1], Notifier: live})

	report, err := d.Run(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, 2, live.Count(trends.NoticeRetry))
	assert.Len(t, report.Sections[0].Notices, 2)
}
