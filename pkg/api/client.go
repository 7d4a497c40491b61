package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"

	"trends-dashboard/pkg/logger"
	"trends-dashboard/pkg/trends"
)

const (
	DefaultBaseURL   = "https://trends.google.com"
	DefaultHostLang  = "en-US"
	DefaultTZOffset  = 360
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	explorePath   = "/trends/api/explore"
	multilinePath = "/trends/api/widgetdata/multiline"
	relatedPath   = "/trends/api/widgetdata/relatedsearches"

	breakoutMarker = "Breakout"
)

// ClientConfig configures the trends web API client
type ClientConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	HostLang string `mapstructure:"hl"`
	// TZOffset is minutes west of UTC; nil means DefaultTZOffset, 0 is UTC.
	TZOffset   *int             `mapstructure:"tz"`
	UserAgent  string           `mapstructure:"user_agent"`
	Connection ConnectionConfig `mapstructure:"connection"`
}

// Client talks to the Google Trends web API. It keeps no state between
// calls: every call explores the query afresh and fetches its own cookie.
// Query does both reads under a single explore.
type Client struct {
	baseURL     string
	hl          string
	tz          string
	userAgent   string
	connManager *ConnectionManager
	log         *logger.Logger

	totalRequests  uint64
	failedRequests uint64
}

var _ trends.Provider = (*Client)(nil)

// NewClient creates a client. Zero-valued fields fall back to defaults.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.HostLang == "" {
		config.HostLang = DefaultHostLang
	}
	tz := DefaultTZOffset
	if config.TZOffset != nil {
		tz = *config.TZOffset
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		hl:          config.HostLang,
		tz:          strconv.Itoa(tz),
		userAgent:   config.UserAgent,
		connManager: NewConnectionManager(config.Connection),
		log:         logger.GetLogger().WithField("component", "trends_client"),
	}
}

// Query explores q once and reads both the interest-over-time table and the
// related queries of every term under the same explore tokens and cookie.
func (c *Client) Query(ctx context.Context, q trends.Query) (*trends.Series, trends.RelatedQueries, error) {
	widgets, cookie, err := c.explore(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	series, err := c.interestOverTime(ctx, q, widgets, cookie)
	if err != nil {
		return nil, nil, err
	}
	related, err := c.relatedQueries(ctx, q, widgets, cookie)
	if err != nil {
		return nil, nil, err
	}
	return series, related, nil
}

// InterestOverTime returns the interest-over-time table for q, with the
// provider's partial marker column attached.
func (c *Client) InterestOverTime(ctx context.Context, q trends.Query) (*trends.Series, error) {
	widgets, cookie, err := c.explore(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.interestOverTime(ctx, q, widgets, cookie)
}

// RelatedQueries returns the top and rising related queries of every term.
func (c *Client) RelatedQueries(ctx context.Context, q trends.Query) (trends.RelatedQueries, error) {
	widgets, cookie, err := c.explore(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.relatedQueries(ctx, q, widgets, cookie)
}

func (c *Client) interestOverTime(ctx context.Context, q trends.Query, widgets []widget, cookie string) (*trends.Series, error) {
	var ts *widget
	for i := range widgets {
		if widgets[i].ID == widgetTimeseries {
			ts = &widgets[i]
			break
		}
	}
	if ts == nil {
		c.log.WithField("geo", q.Geo.Code).Debug("No timeseries widget in explore response")
		return &trends.Series{}, nil
	}

	body, err := c.get(ctx, multilinePath, c.widgetParams(ts), cookie)
	if err != nil {
		return nil, err
	}

	var resp multilineResponse
	if err := json.Unmarshal(stripXSSI(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode interest over time: %w", err)
	}
	return buildSeries(q.Terms, resp.Default.TimelineData), nil
}

func (c *Client) relatedQueries(ctx context.Context, q trends.Query, widgets []widget, cookie string) (trends.RelatedQueries, error) {
	result := trends.RelatedQueries{}
	n := 0
	for i := range widgets {
		w := &widgets[i]
		if w.ID != widgetRelatedQueries {
			continue
		}
		term := relatedTerm(w)
		if term == "" && n < len(q.Terms) {
			term = q.Terms[n]
		}
		n++
		if term == "" {
			continue
		}

		body, err := c.get(ctx, relatedPath, c.widgetParams(w), cookie)
		if err != nil {
			return nil, err
		}

		var resp relatedSearchesResponse
		if err := json.Unmarshal(stripXSSI(body), &resp); err != nil {
			return nil, fmt.Errorf("failed to decode related queries for %q: %w", term, err)
		}
		result[term] = buildRelated(resp)
	}
	return result, nil
}

func (c *Client) explore(ctx context.Context, q trends.Query) ([]widget, string, error) {
	if len(q.Terms) == 0 {
		return nil, "", trends.ErrNoTerms
	}

	payload := exploreRequest{
		Category: q.Category,
		Property: q.Property,
	}
	for _, term := range q.Terms {
		payload.ComparisonItem = append(payload.ComparisonItem, comparisonItem{
			Keyword: term,
			Time:    q.Timeframe,
			Geo:     q.Geo.Code,
		})
	}
	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode explore request: %w", err)
	}

	cookie := c.fetchCookie(ctx, q.Geo.Code)

	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", c.tz)
	params.Set("req", string(reqJSON))

	body, err := c.do(ctx, fasthttp.MethodPost, explorePath, params, cookie)
	if err != nil {
		return nil, "", err
	}

	var resp exploreResponse
	if err := json.Unmarshal(stripXSSI(body), &resp); err != nil {
		return nil, "", fmt.Errorf("failed to decode explore response: %w", err)
	}
	return resp.Widgets, cookie, nil
}

// fetchCookie obtains the NID cookie the API expects. Failure only costs us
// a higher chance of being throttled, so it is not an error.
func (c *Client) fetchCookie(ctx context.Context, geo string) string {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	country := geo
	if i := strings.IndexByte(country, '-'); i > 0 {
		country = country[:i]
	}
	req.SetRequestURI(c.baseURL + "/?geo=" + url.QueryEscape(country))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", c.userAgent)

	if err := c.execute(ctx, req, resp); err != nil {
		c.log.WithError(err).Debug("Cookie request failed")
		return ""
	}

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey("NID")
	if !resp.Header.Cookie(cookie) {
		return ""
	}
	return string(cookie.Value())
}

func (c *Client) widgetParams(w *widget) url.Values {
	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", c.tz)
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, cookie string) ([]byte, error) {
	return c.do(ctx, fasthttp.MethodGet, path, params, cookie)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, cookie string) ([]byte, error) {
	atomic.AddUint64(&c.totalRequests, 1)
	start := time.Now()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path + "?" + params.Encode())
	req.Header.SetMethod(method)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", c.hl)
	if cookie != "" {
		req.Header.SetCookie("NID", cookie)
	}

	if err := c.execute(ctx, req, resp); err != nil {
		atomic.AddUint64(&c.failedRequests, 1)
		return nil, fmt.Errorf("%s request failed: %w", path, err)
	}

	c.log.WithFields(map[string]interface{}{
		"path":        path,
		"status":      resp.StatusCode(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Trends API call finished")

	if err := classifyResponse(path, resp.StatusCode(), resp.Body()); err != nil {
		atomic.AddUint64(&c.failedRequests, 1)
		return nil, err
	}

	// resp is released on return
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func (c *Client) execute(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := c.connManager.GetFastHTTPClient()
	if deadline, ok := ctx.Deadline(); ok {
		return client.DoDeadline(req, resp, deadline)
	}
	return client.DoTimeout(req, resp, c.connManager.RequestTimeout())
}

// Stats returns the request counters.
func (c *Client) Stats() (total, failed uint64) {
	return atomic.LoadUint64(&c.totalRequests), atomic.LoadUint64(&c.failedRequests)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.connManager.Close()
}

func relatedTerm(w *widget) string {
	var req relatedWidgetRequest
	if err := json.Unmarshal(w.Request, &req); err != nil {
		return ""
	}
	kws := req.Restriction.ComplexKeywordsRestriction.Keyword
	if len(kws) == 0 {
		return ""
	}
	return kws[0].Value
}

func buildSeries(terms trends.TermSet, points []timelinePoint) *trends.Series {
	if len(points) == 0 {
		return &trends.Series{}
	}

	s := &trends.Series{Index: make([]time.Time, 0, len(points))}
	columns := make([][]float64, len(terms))
	partial := make([]float64, 0, len(points))

	for _, p := range points {
		sec, err := strconv.ParseInt(p.Time, 10, 64)
		if err != nil {
			continue
		}
		s.Index = append(s.Index, time.Unix(sec, 0).UTC())
		for i := range terms {
			v := math.NaN()
			if i < len(p.Value) && (i >= len(p.HasData) || p.HasData[i]) {
				v = float64(p.Value[i])
			}
			columns[i] = append(columns[i], v)
		}
		if p.IsPartial {
			partial = append(partial, 1)
		} else {
			partial = append(partial, 0)
		}
	}

	for i, term := range terms {
		s.Columns = append(s.Columns, trends.Column{Name: term, Values: columns[i]})
	}
	s.Columns = append(s.Columns, trends.Column{Name: trends.PartialColumn, Values: partial})
	return s
}

func buildRelated(resp relatedSearchesResponse) *trends.Related {
	related := &trends.Related{}
	lists := resp.Default.RankedList

	if len(lists) > 0 {
		for _, kw := range lists[0].RankedKeyword {
			related.Top = append(related.Top, trends.TopQuery{Query: kw.Query, Value: kw.Value})
		}
	}
	if len(lists) > 1 {
		for _, kw := range lists[1].RankedKeyword {
			related.Rising = append(related.Rising, trends.RisingQuery{
				Query:    kw.Query,
				Increase: kw.Value,
				Breakout: strings.EqualFold(kw.FormattedValue, breakoutMarker),
			})
		}
	}
	return related
}
