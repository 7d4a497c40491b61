package trends

import (
	"context"
	"fmt"
	"time"

	"trends-dashboard/pkg/logger"
)

// Result is what one fetch hands back for a single geography.
type Result struct {
	Geo      GeoScope       `json:"geo"`
	Series   *Series        `json:"series"`
	Related  RelatedQueries `json:"related"`
	Attempts int            `json:"attempts"`
	// Exhausted is set when every attempt was rate limited and the result
	// was demoted to "no data".
	Exhausted bool `json:"exhausted"`
}

// Fetcher issues one logical request (interest over time plus related
// queries) per call and retries it when the provider rate limits.
type Fetcher struct {
	provider Provider
	retry    *FixedRetry
	notifier Notifier
	log      *logger.Logger
}

// NewFetcher creates a fetcher over provider with the given retry policy.
func NewFetcher(provider Provider, policy RetryPolicy) *Fetcher {
	return &Fetcher{
		provider: provider,
		retry:    NewFixedRetry(policy),
		notifier: discardNotifier{},
		log:      logger.GetLogger().WithField("component", "trends_fetcher"),
	}
}

// WithNotifier returns a copy of f that reports status notices to n.
func (f *Fetcher) WithNotifier(n Notifier) *Fetcher {
	cp := *f
	if n == nil {
		n = discardNotifier{}
	}
	cp.notifier = n
	return &cp
}

// Fetch queries the provider for terms in geo over timeframe.
//
// Rate limiting is retried with a fixed delay up to the policy's attempt cap;
// when the cap is hit Fetch returns an empty result with Exhausted set and a
// nil error. Any other provider error is returned unchanged in kind.
func (f *Fetcher) Fetch(ctx context.Context, terms TermSet, geo GeoScope, timeframe string) (*Result, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}

	q := Query{
		Terms:     terms,
		Geo:       geo,
		Timeframe: timeframe,
		Category:  0,
		Property:  "",
	}
	log := f.log.WithFields(map[string]interface{}{
		"geo":       geo.Code,
		"terms":     len(terms),
		"timeframe": timeframe,
	})

	var (
		series  *Series
		related RelatedQueries
	)
	start := time.Now()
	attempts, err := f.retry.Execute(ctx, func(attempt int) error {
		log.WithField("attempt", attempt).Debug("Querying trends provider")

		s, r, err := f.provider.Query(ctx, q)
		if err != nil {
			return err
		}
		series, related = s, r
		return nil
	}, func(attempt int, err error) {
		log.WithError(err).WithField("attempt", attempt).Warn("Rate limit reached, retrying")
		f.notifier.Notify(Notice{
			Kind:  NoticeRetry,
			Level: NoticeWarning,
			Geo:   geo.Code,
			Message: fmt.Sprintf("Rate limit reached, retrying in %s (attempt %d/%d)...",
				f.retry.Delay(), attempt, f.retry.MaxAttempts()),
		})
	})

	if err != nil {
		if IsRateLimited(err) && ctx.Err() == nil {
			log.WithField("attempts", attempts).Error("Giving up on rate-limited request")
			f.notifier.Notify(Notice{
				Kind:    NoticeFailure,
				Level:   NoticeError,
				Geo:     geo.Code,
				Message: fmt.Sprintf("Failed to retrieve data after %d attempts.", attempts),
			})
			return &Result{
				Geo:       geo,
				Series:    &Series{},
				Related:   RelatedQueries{},
				Attempts:  attempts,
				Exhausted: true,
			}, nil
		}
		return nil, fmt.Errorf("fetch trends for %s: %w", geo.Label(), err)
	}

	if series == nil {
		series = &Series{}
	}
	if !series.Empty() {
		series = series.Drop(PartialColumn)
	}
	if related == nil {
		related = RelatedQueries{}
	}

	log.WithFields(map[string]interface{}{
		"attempts":    attempts,
		"rows":        series.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Trends fetched")

	return &Result{
		Geo:      geo,
		Series:   series,
		Related:  related,
		Attempts: attempts,
	}, nil
}
