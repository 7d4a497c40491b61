package trends_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/trends/trendstest"
)

var (
	nationwide = trends.GeoScope{Code: "US", Name: "United States"}
	fastPolicy = trends.RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond}
	jan2024    = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func TestFetch_FirstAttemptStripsPartialColumn(t *testing.T) {
	provider := trendstest.New()
	provider.Series["US"] = trendstest.MonthlySeries([]string{"cats", "dogs"}, 12, jan2024)

	notices := &trends.Notices{}
	fetcher := trends.NewFetcher(provider, fastPolicy).WithNotifier(notices)

	res, err := fetcher.Fetch(context.Background(), trends.TermSet{"cats", "dogs"}, nationwide, "today 12-m")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Exhausted)
	assert.Equal(t, []string{"cats", "dogs"}, res.Series.Names())
	_, hasPartial := res.Series.Column(trends.PartialColumn)
	assert.False(t, hasPartial)
	assert.Equal(t, 12, res.Series.Len())
	assert.Empty(t, notices.All())

	// the provider's series is left untouched
	_, stillThere := provider.Series["US"].Column(trends.PartialColumn)
	assert.True(t, stillThere)
}

func TestFetch_QueryParameters(t *testing.T) {
	provider := trendstest.New()
	fetcher := trends.NewFetcher(provider, fastPolicy)

	_, err := fetcher.Fetch(context.Background(), trends.TermSet{"cats"}, nationwide, "today 5-y")
	require.NoError(t, err)

	queries := provider.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, trends.Query{
		Terms:     trends.TermSet{"cats"},
		Geo:       nationwide,
		Timeframe: "today 5-y",
		Category:  0,
		Property:  "",
	}, queries[0])
}

func TestFetch_RetriesRateLimitThenSucceeds(t *testing.T) {
	for k := 1; k < fastPolicy.MaxAttempts; k++ {
		provider := trendstest.New()
		provider.RateLimits = k
		provider.Series["US"] = trendstest.MonthlySeries([]string{"cats"}, 12, jan2024)

		notices := &trends.Notices{}
		fetcher := trends.NewFetcher(provider, fastPolicy).WithNotifier(notices)

		res, err := fetcher.Fetch(context.Background(), trends.TermSet{"cats"}, nationwide, "today 12-m")
		require.NoError(t, err, "k=%d", k)

		assert.Equal(t, k+1, res.Attempts, "k=%d", k)
		assert.False(t, res.Exhausted)
		assert.False(t, res.Series.Empty())
		assert.Equal(t, k, notices.Count(trends.NoticeRetry), "k=%d", k)
		assert.Zero(t, notices.Count(trends.NoticeFailure), "k=%d", k)
	}
}

func TestFetch_AlwaysRateLimitedYieldsNoData(t *testing.T) {
	provider := trendstest.New()
	provider.RateLimits = trendstest.AlwaysRateLimited

	notices := &trends.Notices{}
	fetcher := trends.NewFetcher(provider, fastPolicy).WithNotifier(notices)

	res, err := fetcher.Fetch(context.Background(), trends.TermSet{"cats"}, nationwide, "today 12-m")
	require.NoError(t, err)

	assert.True(t, res.Exhausted)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 5, provider.Calls())
	assert.True(t, res.Series.Empty())
	assert.Empty(t, res.Related)
	assert.Equal(t, 1, notices.Count(trends.NoticeFailure))

	all := notices.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "Failed to retrieve data after 5 attempts.", all[len(all)-1].Message)
}

func TestFetch_EmptySeriesPassesThrough(t *testing.T) {
	provider := trendstest.New()
	notices := &trends.Notices{}
	fetcher := trends.NewFetcher(provider, fastPolicy).WithNotifier(notices)

	res, err := fetcher.Fetch(context.Background(), trends.TermSet{"cats"}, trends.GeoScope{Code: "US-CA"}, "today 12-m")
	require.NoError(t, err)

	assert.True(t, res.Series.Empty())
	assert.Equal(t, 1, res.Attempts, "empty results are never retried")
	assert.Empty(t, notices.All())
}

func TestFetch_OtherErrorsPropagate(t *testing.T) {
	boom := errors.New("malformed response")
	provider := trendstest.New()
	provider.Errors["US"] = boom

	fetcher := trends.NewFetcher(provider, fastPolicy)
	res, err := fetcher.Fetch(context.Background(), trends.TermSet{"cats"}, nationwide, "today 12-m")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, provider.Calls())
}

func TestFetch_NoTerms(t *testing.T) {
	fetcher := trends.NewFetcher(trendstest.New(), fastPolicy)
	_, err := fetcher.Fetch(context.Background(), nil, nationwide, "today 12-m")
	assert.ErrorIs(t, err, trends.ErrNoTerms)
}
