package trends

import "errors"

var (
	// ErrRateLimited is returned by providers when the upstream throttles us.
	// It is the only error the fetcher retries.
	ErrRateLimited = errors.New("rate limited by trends provider")

	// ErrNoTerms is returned when a request carries no usable search term.
	ErrNoTerms = errors.New("no search terms given")
)

// IsRateLimited reports whether err is, or wraps, ErrRateLimited.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
