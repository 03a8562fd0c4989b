// crypto-fun — cryptocurrency market data from Coinlore.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevind700/crypto-fun/api"
	"github.com/kevind700/crypto-fun/internal/coinlore"
	"github.com/kevind700/crypto-fun/internal/config"
	"github.com/kevind700/crypto-fun/internal/logging"
	"github.com/kevind700/crypto-fun/internal/market"
	"github.com/kevind700/crypto-fun/internal/news"
	"github.com/kevind700/crypto-fun/pkg/models"
	"github.com/kevind700/crypto-fun/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cryptofun",
	Short: "crypto-fun — cryptocurrency market data from Coinlore",
	Long: `crypto-fun
A Go client and API server for the free Coinlore cryptocurrency data
API: ticker pages, coin detail, global market metrics, exchanges, top
movers, search, and crypto news aggregation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logging.Init(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tickersCmd)
	rootCmd.AddCommand(coinCmd)
	rootCmd.AddCommand(globalCmd)
	rootCmd.AddCommand(exchangesCmd)
	rootCmd.AddCommand(moversCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// newClient builds the Coinlore client from the loaded config.
func newClient() *coinlore.Client {
	return coinlore.New(coinlore.Config{
		BaseURL:    cfg.Coinlore.BaseURL,
		Timeout:    time.Duration(cfg.Coinlore.TimeoutSec) * time.Second,
		RateLimit:  cfg.Coinlore.RateLimit,
		RateWindow: time.Duration(cfg.Coinlore.RateWindowSec) * time.Second,
		CacheTTL:   time.Duration(cfg.Coinlore.CacheTTLSec) * time.Second,
	})
}

func newService(client *coinlore.Client) *market.Service {
	return market.NewService(client, market.Config{
		PageLimit:        cfg.Market.PageLimit,
		SearchPageLimit:  cfg.Market.SearchPageLimit,
		SearchMinResults: cfg.Market.SearchMinResults,
		TopMovers:        cfg.Market.TopMovers,
	})
}

func cmdContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Coinlore.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout+5*time.Second)
}

// printTickers renders a ticker table to stdout.
func printTickers(tickers []models.Ticker) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSYMBOL\tNAME\tPRICE\t24H\t7D\tMARKET CAP")
	for _, t := range tickers {
		fmt.Fprintf(w, "%d\t%s\t%s\t$%s\t%s\t%s\t%s\n",
			t.Rank, t.Symbol, t.Name,
			utils.FormatPrice(t.PriceUSD),
			utils.FormatPercentChange(t.PercentChange24h),
			utils.FormatPercentChange(t.PercentChange7d),
			utils.FormatVolume(t.MarketCapUSD),
		)
	}
	w.Flush()
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crypto-fun %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Tickers Command ---

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "List a page of cryptocurrency tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetInt("start")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := cmdContext()
		defer cancel()

		tickers, total, err := newClient().Tickers(ctx, start, limit)
		if err != nil {
			return err
		}

		printTickers(tickers)
		fmt.Printf("\n%d of %d coins (start=%d)\n", len(tickers), total, start)
		return nil
	},
}

func init() {
	tickersCmd.Flags().Int("start", 0, "pagination offset")
	tickersCmd.Flags().Int("limit", 0, "page size (default 100)")
}

// --- Coin Command ---

var coinCmd = &cobra.Command{
	Use:   "coin [id]",
	Short: "Show detail for a single coin by Coinlore ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		client := newClient()
		t, err := client.Ticker(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s) — rank #%d\n", t.Name, t.Symbol, t.Rank)
		fmt.Printf("  Price:       $%s (%s BTC)\n", utils.FormatPrice(t.PriceUSD), t.PriceBTC)
		fmt.Printf("  Change:      1h %s | 24h %s | 7d %s\n",
			utils.FormatPercentChange(t.PercentChange1h),
			utils.FormatPercentChange(t.PercentChange24h),
			utils.FormatPercentChange(t.PercentChange7d))
		fmt.Printf("  Market Cap:  %s\n", utils.FormatVolume(t.MarketCapUSD))
		fmt.Printf("  Volume 24h:  %s\n", utils.FormatVolume(t.Volume24))
		fmt.Printf("  Supply:      %s circulating / %s total\n",
			utils.FormatLargeNumber(utils.ParseFloatOrZero(t.CSupply)),
			utils.FormatLargeNumber(utils.ParseFloatOrZero(t.TSupply)))

		withMarkets, _ := cmd.Flags().GetBool("markets")
		if withMarkets {
			markets, err := client.CoinMarkets(ctx, t.ID)
			if err != nil {
				return err
			}
			fmt.Println("\n  Markets:")
			for i, m := range markets {
				if i >= 10 {
					break
				}
				fmt.Printf("    %-14s %s/%s  $%s\n", m.Name, m.Base, m.Quote,
					utils.FormatPrice(m.PriceUSD))
			}
		}
		return nil
	},
}

func init() {
	coinCmd.Flags().Bool("markets", false, "also list the coin's top markets")
}

// --- Global Command ---

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Show global cryptocurrency market statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		g, err := newClient().Global(ctx)
		if err != nil {
			return err
		}

		fmt.Println("🌍 Global Crypto Market")
		fmt.Printf("  Coins:         %d across %d markets\n", g.CoinsCount, g.ActiveMarkets)
		fmt.Printf("  Market Cap:    %s (%s%% 24h)\n", utils.FormatValue(g.TotalMarketCap), g.MarketCapChange)
		fmt.Printf("  Volume 24h:    %s (%s%% 24h)\n", utils.FormatValue(g.TotalVolume), g.VolumeChange)
		fmt.Printf("  Dominance:     BTC %s%% | ETH %s%%\n", g.BTCDominance, g.ETHDominance)
		return nil
	},
}

// --- Exchanges Command ---

var exchangesCmd = &cobra.Command{
	Use:   "exchanges [name]",
	Short: "List exchanges, or show one exchange by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		client := newClient()

		var (
			exchanges []models.Exchange
			err       error
		)
		if len(args) == 1 {
			exchanges, err = client.Exchange(ctx, args[0])
		} else {
			limit, _ := cmd.Flags().GetInt("limit")
			exchanges, err = client.Exchanges(ctx, 0, limit)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOUNTRY\tPAIRS\tVOLUME (USD)")
		for _, e := range exchanges {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				e.Name, e.Country, e.ActivePairs, utils.FormatVolume(e.VolumeUSD))
		}
		w.Flush()
		return nil
	},
}

func init() {
	exchangesCmd.Flags().Int("limit", 0, "page size (default 100)")
}

// --- Movers Command ---

var moversCmd = &cobra.Command{
	Use:   "movers",
	Short: "Show top movers (gainers, losers, volume, marketcap)",
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, _ := cmd.Flags().GetString("direction")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := cmdContext()
		defer cancel()

		svc := newService(newClient())

		var (
			movers []models.Ticker
			err    error
		)
		switch direction {
		case "gainers":
			movers, err = svc.TopGainers(ctx, limit)
		case "losers":
			movers, err = svc.TopLosers(ctx, limit)
		case "volume":
			movers, err = svc.TopByVolume(ctx, limit)
		case "marketcap":
			movers, err = svc.TopByMarketCap(ctx, limit)
		default:
			return fmt.Errorf("direction must be one of: gainers, losers, volume, marketcap")
		}
		if err != nil {
			return err
		}

		printTickers(movers)
		return nil
	},
}

func init() {
	moversCmd.Flags().String("direction", "gainers", "gainers, losers, volume, or marketcap")
	moversCmd.Flags().Int("limit", 0, "number of movers (default 10)")
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search coins by name or symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		svc := newService(newClient())
		results, err := svc.Search(ctx, nil, args[0])
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Printf("No coins matched %q\n", args[0])
			return nil
		}
		printTickers(results)
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show recent crypto headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		coin, _ := cmd.Flags().GetString("coin")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := cmdContext()
		defer cancel()

		agg := news.NewWithOptions(news.ParseFeeds(cfg.News.Feeds),
			time.Duration(cfg.News.CacheTTLSec)*time.Second)

		var (
			articles []models.NewsArticle
			err      error
		)
		if coin != "" {
			articles, err = agg.CoinNews(ctx, coin, limit)
		} else {
			articles, err = agg.MarketNews(ctx, limit)
		}
		if err != nil {
			return err
		}

		for _, a := range articles {
			fmt.Printf("📰 %s\n", a.Title)
			fmt.Printf("   %s — %s\n", a.Source, a.PublishedAt.Format("2006-01-02 15:04"))
			fmt.Printf("   %s\n\n", a.URL)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().String("coin", "", "filter headlines by coin symbol or name")
	newsCmd.Flags().Int("limit", 15, "number of headlines")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		api.Version = version
		srv := api.NewServer(cfg)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting crypto-fun API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  crypto-fun — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		for _, s := range config.Describe(cfg) {
			fmt.Printf("    %-20s %s (%s)\n", s.Name+":", s.Value, s.Source)
		}
		fmt.Println()

		ctx, cancel := cmdContext()
		defer cancel()

		upstream := "✅ reachable"
		if err := newClient().Ping(ctx); err != nil {
			upstream = fmt.Sprintf("❌ %v", err)
		}
		fmt.Printf("  Coinlore: %s\n", upstream)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
