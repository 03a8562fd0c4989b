package coinlore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient returns a client pointed at srv with a generous rate
// limit so tests never sleep.
func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		RateLimit:  1000,
		RateWindow: time.Second,
	})
}

func TestTickersPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tickers/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != "50" {
			t.Errorf("start = %q, want 50", got)
		}
		if got := r.URL.Query().Get("limit"); got != "25" {
			t.Errorf("limit = %q, want 25", got)
		}
		io.WriteString(w, `{
			"data": [
				{"id": "90", "symbol": "BTC", "name": "Bitcoin", "nameid": "bitcoin", "rank": 1,
				 "price_usd": "40000", "percent_change_24h": "5.2", "market_cap_usd": "800000000000",
				 "volume24": "30000000000"}
			],
			"info": {"coins_num": 12345, "time": 1700000000}
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	tickers, total, err := c.Tickers(context.Background(), 50, 25)
	if err != nil {
		t.Fatalf("Tickers: %v", err)
	}
	if total != 12345 {
		t.Errorf("total = %d, want 12345", total)
	}
	if len(tickers) != 1 || tickers[0].Symbol != "BTC" {
		t.Errorf("unexpected tickers: %+v", tickers)
	}
	if tickers[0].PriceUSD != "40000" {
		t.Errorf("price kept as string, got %q", tickers[0].PriceUSD)
	}
}

func TestTickersDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start"); got != "0" {
			t.Errorf("start = %q, want 0", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit = %q, want 100", got)
		}
		io.WriteString(w, `{"data": [], "info": {"coins_num": 0}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if _, _, err := c.Tickers(context.Background(), -1, 0); err != nil {
		t.Fatalf("Tickers: %v", err)
	}
}

func TestTickersCached(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, `{"data": [{"id": "1", "symbol": "BTC"}], "info": {"coins_num": 1}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	for i := 0; i < 3; i++ {
		if _, _, err := c.Tickers(context.Background(), 0, 100); err != nil {
			t.Fatalf("Tickers %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("upstream hit %d times, want 1 (cache)", hits)
	}
}

func TestTickersByIDsJoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ticker/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "90,80,58" {
			t.Errorf("id = %q, want comma-joined", got)
		}
		io.WriteString(w, `[{"id": "90"}, {"id": "80"}, {"id": "58"}]`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	tickers, err := c.TickersByIDs(context.Background(), []string{"90", "80", "58"})
	if err != nil {
		t.Fatalf("TickersByIDs: %v", err)
	}
	if len(tickers) != 3 {
		t.Errorf("got %d tickers, want 3", len(tickers))
	}
}

func TestTickerSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": "90", "symbol": "BTC", "name": "Bitcoin"}]`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ticker, err := c.Ticker(context.Background(), "90")
	if err != nil {
		t.Fatalf("Ticker: %v", err)
	}
	if ticker.Symbol != "BTC" {
		t.Errorf("symbol = %s", ticker.Symbol)
	}
}

func TestTickerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Ticker(context.Background(), "999999")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected DecodeError, got %v", err)
	}
}

func TestGlobalSingleElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/global/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `[{"coins_count": 5000, "active_markets": 20000,
			"total_mcap": 1200000000000, "total_volume": 90000000000,
			"btc_d": "52.3", "eth_d": "17.1"}]`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	g, err := c.Global(context.Background())
	if err != nil {
		t.Fatalf("Global: %v", err)
	}
	if g.CoinsCount != 5000 || g.BTCDominance != "52.3" {
		t.Errorf("unexpected global: %+v", g)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *RateLimitError
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e *ServerError
			return errors.As(err, &e) && e.Status == 500
		}},
		{"bad gateway", http.StatusBadGateway, func(err error) bool {
			var e *ServerError
			return errors.As(err, &e) && e.Status == 502
		}},
		{"not found", http.StatusNotFound, func(err error) bool {
			var e *APIError
			return errors.As(err, &e) && e.Status == 404
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newTestClient(srv)
			_, _, err := c.Tickers(context.Background(), 0, 100)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("wrong error type: %v", err)
			}
		})
	}
}

func TestDecodeErrorOnBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, _, err := c.Tickers(context.Background(), 0, 100)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected DecodeError, got %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	c := New(Config{
		BaseURL:    "http://127.0.0.1:1",
		Timeout:    time.Second,
		RateLimit:  1000,
		RateWindow: time.Second,
	})
	_, _, err := c.Tickers(context.Background(), 0, 100)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("expected NetworkError, got %v", err)
	}
}

func TestExchangeAndMarketsPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/exchanges/":
			io.WriteString(w, `[{"id": "1", "name": "Binance"}]`)
		case "/exchange/binance":
			io.WriteString(w, `[{"id": "1", "name": "Binance"}]`)
		case "/coin/markets/":
			io.WriteString(w, `[{"name": "Binance", "base": "BTC", "quote": "USDT"}]`)
		case "/coin/social_stats/bitcoin":
			io.WriteString(w, `{"name": "Bitcoin", "symbol": "BTC"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ctx := context.Background()

	if _, err := c.Exchanges(ctx, 0, 100); err != nil {
		t.Errorf("Exchanges: %v", err)
	}
	if _, err := c.Exchange(ctx, "binance"); err != nil {
		t.Errorf("Exchange: %v", err)
	}
	if _, err := c.CoinMarkets(ctx, "90"); err != nil {
		t.Errorf("CoinMarkets: %v", err)
	}
	stats, err := c.SocialStats(ctx, "bitcoin")
	if err != nil {
		t.Errorf("SocialStats: %v", err)
	} else if stats.Symbol != "BTC" {
		t.Errorf("social symbol = %s", stats.Symbol)
	}
}
