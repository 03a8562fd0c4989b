// Package coinlore implements the Coinlore market-data API client.
// Coinlore is a free, no-API-key provider serving cryptocurrency
// tickers, global market statistics, exchanges, per-coin markets, and
// social statistics as JSON over HTTPS.
//
// Docs: https://www.coinlore.com/cryptocurrency-data-api
package coinlore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kevind700/crypto-fun/internal/infra"
	"github.com/kevind700/crypto-fun/internal/logging"
	"github.com/kevind700/crypto-fun/pkg/models"
)

const (
	// DefaultBaseURL is the public Coinlore API root.
	DefaultBaseURL = "https://api.coinlore.net/api"

	// DefaultStart and DefaultLimit apply when the caller passes
	// non-positive paging values.
	DefaultStart = 0
	DefaultLimit = 100

	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = time.Minute
)

// Config holds client construction options. Zero values fall back to
// the package defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit requests per RateWindow. Coinlore asks for at most
	// one request per second on the free tier.
	RateLimit  int
	RateWindow time.Duration

	// CacheTTL bounds how long fetched pages are reused.
	CacheTTL time.Duration
}

// Client talks to the Coinlore API. Construct one per process and pass
// it explicitly to consumers; its configuration is read-only after New,
// so it is safe for concurrent use. Each call is a single round trip —
// no retries, no backoff.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// New creates a Coinlore client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    infra.NewHTTPClient(cfg.Timeout),
		cache:   infra.NewCache(cfg.CacheTTL),
		limiter: infra.NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping verifies connectivity to Coinlore.
func (c *Client) Ping(ctx context.Context) error {
	var resp []models.GlobalData
	if err := c.getJSON(ctx, "/global/", nil, &resp); err != nil {
		return fmt.Errorf("coinlore ping: %w", err)
	}
	return nil
}

// Tickers fetches one page of tickers plus the upstream total-count
// hint. Non-positive start/limit fall back to the defaults (0, 100).
func (c *Client) Tickers(ctx context.Context, start, limit int) ([]models.Ticker, int, error) {
	if start < 0 {
		start = DefaultStart
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	cacheKey := fmt.Sprintf("tickers:%d:%d", start, limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		page := cached.(tickersResponse)
		return page.Data, page.Info.CoinsNum, nil
	}

	var resp tickersResponse
	params := url.Values{
		"start": {fmt.Sprint(start)},
		"limit": {fmt.Sprint(limit)},
	}
	if err := c.getJSON(ctx, "/tickers/", params, &resp); err != nil {
		return nil, 0, err
	}

	c.cache.Set(cacheKey, resp)
	return resp.Data, resp.Info.CoinsNum, nil
}

// Ticker fetches a single coin by ID.
func (c *Client) Ticker(ctx context.Context, id string) (*models.Ticker, error) {
	tickers, err := c.TickersByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("no ticker for id %q", id)}
	}
	return &tickers[0], nil
}

// TickersByIDs fetches multiple coins in one request; IDs are
// comma-joined per the upstream contract.
func (c *Client) TickersByIDs(ctx context.Context, ids []string) ([]models.Ticker, error) {
	var resp []models.Ticker
	params := url.Values{"id": {strings.Join(ids, ",")}}
	if err := c.getJSON(ctx, "/ticker/", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Global fetches the aggregate market snapshot. The upstream wraps it
// in a single-element array.
func (c *Client) Global(ctx context.Context) (*models.GlobalData, error) {
	if cached, ok := c.cache.Get("global"); ok {
		g := cached.(models.GlobalData)
		return &g, nil
	}

	var resp []models.GlobalData
	if err := c.getJSON(ctx, "/global/", nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("empty global response")}
	}

	c.cache.Set("global", resp[0])
	return &resp[0], nil
}

// Exchanges fetches one page of exchanges.
func (c *Client) Exchanges(ctx context.Context, start, limit int) ([]models.Exchange, error) {
	if start < 0 {
		start = DefaultStart
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var resp []models.Exchange
	params := url.Values{
		"start": {fmt.Sprint(start)},
		"limit": {fmt.Sprint(limit)},
	}
	if err := c.getJSON(ctx, "/exchanges/", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Exchange fetches a single exchange by name.
func (c *Client) Exchange(ctx context.Context, name string) ([]models.Exchange, error) {
	var resp []models.Exchange
	if err := c.getJSON(ctx, "/exchange/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CoinMarkets fetches the markets where a coin trades.
func (c *Client) CoinMarkets(ctx context.Context, id string) ([]models.CoinMarket, error) {
	var resp []models.CoinMarket
	params := url.Values{"id": {id}}
	if err := c.getJSON(ctx, "/coin/markets/", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SocialStats fetches social media statistics for a coin by name ID.
func (c *Client) SocialStats(ctx context.Context, name string) (*models.SocialStats, error) {
	var resp models.SocialStats
	if err := c.getJSON(ctx, "/coin/social_stats/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON performs one GET round trip and decodes the body into dest.
// Status branching implements the error taxonomy: 429 → RateLimitError,
// 5xx → ServerError, other non-2xx → APIError; each is logged before it
// propagates. Transport failures become NetworkError. Nothing retries.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	full := c.baseURL + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, status, err := infra.DoGet(ctx, c.http, full, map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	})
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer body.Close()

	if status < 200 || status > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, body)
		switch {
		case status == http.StatusTooManyRequests:
			logging.Warnf("coinlore: rate limit exceeded (%s)", path)
			return &RateLimitError{}
		case status >= 500:
			logging.Warnf("coinlore: server error %d (%s)", status, path)
			return &ServerError{Status: status}
		default:
			logging.Warnf("coinlore: API error %d (%s)", status, path)
			return &APIError{Status: status}
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
