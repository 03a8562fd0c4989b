// Package api provides the HTTP REST API server for crypto-fun.
//
// It exposes endpoints for ticker pages, coin detail, markets, social
// stats, chart data, global metrics, exchanges, movers, search, news,
// and WebSocket streaming of ticker refreshes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kevind700/crypto-fun/internal/coinlore"
	"github.com/kevind700/crypto-fun/internal/config"
	"github.com/kevind700/crypto-fun/internal/logging"
	"github.com/kevind700/crypto-fun/internal/market"
	"github.com/kevind700/crypto-fun/internal/news"
	"github.com/kevind700/crypto-fun/pkg/models"
	"github.com/kevind700/crypto-fun/pkg/utils"
)

// Version is stamped at build time.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	client  *coinlore.Client
	svc     *market.Service
	watcher *market.Watcher
	news    *news.Aggregator
	wsHub   *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) *Server {
	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

	client := coinlore.New(coinlore.Config{
		BaseURL:    cfg.Coinlore.BaseURL,
		Timeout:    time.Duration(cfg.Coinlore.TimeoutSec) * time.Second,
		RateLimit:  cfg.Coinlore.RateLimit,
		RateWindow: time.Duration(cfg.Coinlore.RateWindowSec) * time.Second,
		CacheTTL:   time.Duration(cfg.Coinlore.CacheTTLSec) * time.Second,
	})

	svc := market.NewService(client, market.Config{
		PageLimit:        cfg.Market.PageLimit,
		SearchPageLimit:  cfg.Market.SearchPageLimit,
		SearchMinResults: cfg.Market.SearchMinResults,
		TopMovers:        cfg.Market.TopMovers,
	})

	srv := &Server{
		cfg:    cfg,
		client: client,
		svc:    svc,
		watcher: market.NewWatcher(client,
			time.Duration(cfg.Watch.IntervalSec)*time.Second, cfg.Watch.PageLimit),
		wsHub: NewWSHub(),
	}
	if cfg.News.Enabled {
		srv.news = news.NewWithOptions(news.ParseFeeds(cfg.News.Feeds),
			time.Duration(cfg.News.CacheTTLSec)*time.Second)
	}

	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown. The
// background watcher and the WebSocket hub run for the lifetime of
// the server.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.wsHub.Run()
	go s.watcher.Run(ctx)
	go s.forwardSnapshots(ctx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	logging.Infof("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	return httpSrv.Shutdown(shutdownCtx)
}

// forwardSnapshots relays applied watcher snapshots to WebSocket clients.
func (s *Server) forwardSnapshots(ctx context.Context) {
	sub := s.watcher.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-sub:
			s.wsHub.Broadcast(WSMessage{
				Type: "tickers_refreshed",
				Data: map[string]interface{}{
					"seq":        snap.Seq,
					"total":      snap.Total,
					"count":      len(snap.Tickers),
					"fetched_at": snap.FetchedAt,
				},
			})
		}
	}
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Ticker pages
		r.Get("/tickers", s.handleTickers)

		// Coin detail
		r.Get("/coins/{id}", s.handleCoin)
		r.Get("/coins/{id}/markets", s.handleCoinMarkets)
		r.Get("/coins/{id}/social", s.handleCoinSocial)
		r.Get("/coins/{id}/chart", s.handleCoinChart)

		// Global market data
		r.Get("/global", s.handleGlobal)
		r.Get("/metrics/market", s.handleMarketMetrics)

		// Exchanges
		r.Get("/exchanges", s.handleExchanges)
		r.Get("/exchanges/{name}", s.handleExchange)

		// Movers & search
		r.Get("/movers", s.handleMovers)
		r.Get("/search", s.handleSearch)

		// News
		r.Get("/news", s.handleNews)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TickersPage is the payload for GET /api/v1/tickers.
type TickersPage struct {
	Tickers []models.Ticker `json:"tickers"`
	Total   int             `json:"total"`
	Start   int             `json:"start"`
	Limit   int             `json:"limit"`
}

// CoinChart is the payload for GET /api/v1/coins/{id}/chart.
type CoinChart struct {
	ID     string              `json:"id"`
	Symbol string              `json:"symbol"`
	Points []models.ChartPoint `json:"points"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":     "ok",
		"version":    Version,
		"time":       time.Now().UTC().Format(time.RFC3339),
		"ws_clients": s.wsHub.ClientCount(),
	}
	if snap, ok := s.watcher.Latest(); ok {
		data["last_refresh"] = snap.FetchedAt
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	start := queryInt(r, "start", 0)
	limit := queryInt(r, "limit", s.cfg.Market.PageLimit)

	tickers, total, err := s.client.Tickers(r.Context(), start, limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: TickersPage{
			Tickers: tickers,
			Total:   total,
			Start:   start,
			Limit:   limit,
		},
	})
}

func (s *Server) handleCoin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ticker, err := s.client.Ticker(r.Context(), id)
	if err != nil {
		var decodeErr *coinlore.DecodeError
		if errors.As(err, &decodeErr) {
			writeError(w, http.StatusNotFound, "coin not found: "+id)
			return
		}
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ticker})
}

func (s *Server) handleCoinMarkets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	markets, err := s.client.CoinMarkets(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: markets})
}

func (s *Server) handleCoinSocial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stats, err := s.client.SocialStats(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

func (s *Server) handleCoinChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ticker, err := s.client.Ticker(r.Context(), id)
	if err != nil {
		var decodeErr *coinlore.DecodeError
		if errors.As(err, &decodeErr) {
			writeError(w, http.StatusNotFound, "coin not found: "+id)
			return
		}
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: CoinChart{
			ID:     ticker.ID,
			Symbol: ticker.Symbol,
			Points: utils.SparkPoints(*ticker),
		},
	})
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	global, err := s.client.Global(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: global})
}

func (s *Server) handleMarketMetrics(w http.ResponseWriter, r *http.Request) {
	overview, err := s.svc.Overview(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: overview.Metrics})
}

func (s *Server) handleExchanges(w http.ResponseWriter, r *http.Request) {
	start := queryInt(r, "start", 0)
	limit := queryInt(r, "limit", 0)

	exchanges, err := s.client.Exchanges(r.Context(), start, limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: exchanges})
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	exchange, err := s.client.Exchange(r.Context(), name)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: exchange})
}

func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "gainers"
	}
	limit := queryInt(r, "limit", 0)

	var (
		movers []models.Ticker
		err    error
	)
	switch direction {
	case "gainers":
		movers, err = s.svc.TopGainers(r.Context(), limit)
	case "losers":
		movers, err = s.svc.TopLosers(r.Context(), limit)
	case "volume":
		movers, err = s.svc.TopByVolume(r.Context(), limit)
	case "marketcap":
		movers, err = s.svc.TopByMarketCap(r.Context(), limit)
	default:
		writeError(w, http.StatusBadRequest,
			"direction must be one of: gainers, losers, volume, marketcap")
		return
	}
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: movers})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var local []models.Ticker
	if snap, ok := s.watcher.Latest(); ok {
		local = snap.Tickers
	}

	results, err := s.svc.Search(r.Context(), local, q)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.news == nil {
		writeError(w, http.StatusServiceUnavailable, "news aggregation is disabled")
		return
	}

	limit := queryInt(r, "limit", 20)
	coin := r.URL.Query().Get("coin")

	var (
		articles []models.NewsArticle
		err      error
	)
	if coin != "" {
		articles, err = s.news.CoinNews(r.Context(), coin, limit)
	} else {
		articles, err = s.news.MarketNews(r.Context(), limit)
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

// ============================================================
// Helpers
// ============================================================

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// writeUpstreamError maps upstream client errors to HTTP statuses:
// rate limiting surfaces as 429, everything else the upstream did
// wrong surfaces as 502.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var rateErr *coinlore.RateLimitError
	if errors.As(err, &rateErr) {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub    *WSHub
	send   chan WSMessage
	mu     sync.Mutex
	closed bool
}

// Send queues a message for the client's write pump. It reports false
// when the queue is full or the client has already been disconnected.
func (c *WSClient) Send(msg WSMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close marks the client disconnected and releases its write pump.
// The closed flag is set under the same lock Send takes, so a reply
// racing a disconnect is refused instead of hitting a closed channel.
func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*WSClient, 0, len(h.clients))
			for client := range h.clients {
				targets = append(targets, client)
			}
			h.mu.RUnlock()
			for _, client := range targets {
				if !client.Send(msg) {
					// Slow client; disconnect
					h.remove(client)
				}
			}
		}
	}
}

// remove drops a client from the hub and closes its send queue.
func (h *WSHub) remove(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
