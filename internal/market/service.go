// Package market derives named views (top movers, search results,
// market overview) from raw Coinlore pages. It owns the fallback and
// refresh policies; all reordering and filtering is delegated to the
// pure transformations in pkg/utils.
package market

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kevind700/crypto-fun/pkg/models"
	"github.com/kevind700/crypto-fun/pkg/utils"
)

// Source is the slice of the Coinlore client this service consumes.
// Tests inject a fake.
type Source interface {
	Tickers(ctx context.Context, start, limit int) ([]models.Ticker, int, error)
	Global(ctx context.Context) (*models.GlobalData, error)
}

// Config holds the service's view policies.
type Config struct {
	// PageLimit is the page size for the mover views.
	PageLimit int
	// SearchPageLimit is the large page fetched when local search is
	// too sparse.
	SearchPageLimit int
	// SearchMinResults is the local-result threshold below which the
	// service escalates to a remote search.
	SearchMinResults int
	// TopMovers is the default mover list length.
	TopMovers int
}

// DefaultConfig mirrors the app's limits: 100-row pages, a 2000-row
// search page, a 5-result threshold, 10 movers.
func DefaultConfig() Config {
	return Config{
		PageLimit:        100,
		SearchPageLimit:  2000,
		SearchMinResults: 5,
		TopMovers:        10,
	}
}

// Service composes a Source with the ticker transformations.
type Service struct {
	src Source
	cfg Config
}

// NewService creates a market service over src.
func NewService(src Source, cfg Config) *Service {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}
	if cfg.SearchPageLimit <= 0 {
		cfg.SearchPageLimit = 2000
	}
	if cfg.SearchMinResults <= 0 {
		cfg.SearchMinResults = 5
	}
	if cfg.TopMovers <= 0 {
		cfg.TopMovers = 10
	}
	return &Service{src: src, cfg: cfg}
}

// moverPage fetches the fixed-size page the mover views are computed
// from. These views are convenience compositions, not independently
// cached — the client's own page cache is the only caching layer.
func (s *Service) moverPage(ctx context.Context) ([]models.Ticker, error) {
	tickers, _, err := s.src.Tickers(ctx, 0, s.cfg.PageLimit)
	return tickers, err
}

func (s *Service) limitOrDefault(limit int) int {
	if limit <= 0 {
		return s.cfg.TopMovers
	}
	return limit
}

// TopGainers returns the coins with the highest 24h percent change.
func (s *Service) TopGainers(ctx context.Context, limit int) ([]models.Ticker, error) {
	page, err := s.moverPage(ctx)
	if err != nil {
		return nil, err
	}
	return utils.TopGainers(page, s.limitOrDefault(limit)), nil
}

// TopLosers returns the coins with the lowest 24h percent change,
// most negative first.
func (s *Service) TopLosers(ctx context.Context, limit int) ([]models.Ticker, error) {
	page, err := s.moverPage(ctx)
	if err != nil {
		return nil, err
	}
	return utils.TopLosers(page, s.limitOrDefault(limit)), nil
}

// TopByVolume returns the most traded coins by 24h USD volume.
func (s *Service) TopByVolume(ctx context.Context, limit int) ([]models.Ticker, error) {
	page, err := s.moverPage(ctx)
	if err != nil {
		return nil, err
	}
	return utils.TopByVolume(page, s.limitOrDefault(limit)), nil
}

// TopByMarketCap returns the largest coins by market capitalization.
func (s *Service) TopByMarketCap(ctx context.Context, limit int) ([]models.Ticker, error) {
	page, err := s.moverPage(ctx)
	if err != nil {
		return nil, err
	}
	return utils.TopByMarketCap(page, s.limitOrDefault(limit)), nil
}

// SearchRemote fetches the large search page and filters it locally.
func (s *Service) SearchRemote(ctx context.Context, query string) ([]models.Ticker, error) {
	tickers, _, err := s.src.Tickers(ctx, 0, s.cfg.SearchPageLimit)
	if err != nil {
		return nil, err
	}
	return utils.SearchCoins(tickers, query), nil
}

// Search filters the already-loaded local collection first and
// escalates to a remote search only when local matching is too sparse
// to be useful (< SearchMinResults). An empty query returns an empty
// result without touching the network.
func (s *Service) Search(ctx context.Context, local []models.Ticker, query string) ([]models.Ticker, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Ticker{}, nil
	}
	results := utils.SearchCoins(local, query)
	if len(results) >= s.cfg.SearchMinResults {
		return results, nil
	}
	return s.SearchRemote(ctx, query)
}

// Overview is the dashboard view: the global snapshot, the first
// tickers page, and derived metrics.
type Overview struct {
	Global  models.GlobalData    `json:"global"`
	Tickers []models.Ticker      `json:"tickers"`
	Total   int                  `json:"total"`
	Metrics models.MarketMetrics `json:"metrics"`
}

// Overview fetches the global snapshot and the first tickers page
// concurrently and derives the dashboard metrics.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var (
		global  *models.GlobalData
		tickers []models.Ticker
		total   int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		global, err = s.src.Global(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickers, total, err = s.src.Tickers(ctx, 0, s.cfg.PageLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		Global:  *global,
		Tickers: tickers,
		Total:   total,
		Metrics: deriveMetrics(*global),
	}, nil
}

// deriveMetrics parses the dominance strings out of the raw snapshot.
func deriveMetrics(g models.GlobalData) models.MarketMetrics {
	return models.MarketMetrics{
		TotalMarketCap: g.TotalMarketCap,
		TotalVolume:    g.TotalVolume,
		BTCDominance:   utils.ParseFloatOrZero(g.BTCDominance),
		ETHDominance:   utils.ParseFloatOrZero(g.ETHDominance),
		ActiveMarkets:  g.ActiveMarkets,
		TotalCoins:     g.CoinsCount,
	}
}
