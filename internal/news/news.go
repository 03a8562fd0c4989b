// Package news aggregates cryptocurrency headlines from public RSS feeds.
package news

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/kevind700/crypto-fun/internal/infra"
	"github.com/kevind700/crypto-fun/pkg/models"
)

// Source is one RSS feed configuration.
type Source struct {
	Name   string
	RSSURL string
}

// DefaultSources lists the crypto news RSS feeds polled by default.
var DefaultSources = []Source{
	{Name: "CoinDesk", RSSURL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
	{Name: "Cointelegraph", RSSURL: "https://cointelegraph.com/rss"},
	{Name: "Decrypt", RSSURL: "https://decrypt.co/feed"},
	{Name: "Bitcoin Magazine", RSSURL: "https://bitcoinmagazine.com/feed"},
}

const defaultCacheTTL = 10 * time.Minute

// Aggregator fetches and merges articles across the configured feeds.
type Aggregator struct {
	sources []Source
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// New creates an aggregator over the default feeds.
func New() *Aggregator {
	return NewWithOptions(DefaultSources, defaultCacheTTL)
}

// NewWithSources creates an aggregator over custom feeds with the
// default cache TTL.
func NewWithSources(sources []Source) *Aggregator {
	return NewWithOptions(sources, defaultCacheTTL)
}

// NewWithOptions creates an aggregator over custom feeds with a custom
// cache TTL. Empty sources fall back to DefaultSources and a
// non-positive TTL falls back to the default.
func NewWithOptions(sources []Source, cacheTTL time.Duration) *Aggregator {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Aggregator{
		sources: sources,
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// ParseFeeds converts configured "Name=URL" pairs into sources.
// Malformed entries are skipped; an empty result means the caller
// should use the defaults.
func ParseFeeds(pairs []string) []Source {
	var sources []Source
	for _, pair := range pairs {
		name, url, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			continue
		}
		sources = append(sources, Source{Name: name, RSSURL: url})
	}
	return sources
}

// MarketNews returns recent articles from all configured feeds, newest
// first. A feed that fails to fetch is skipped; the merged result is
// cached for the TTL.
func (a *Aggregator) MarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range a.sources {
		articles, err := a.fetchRSS(ctx, src)
		if err != nil {
			// Non-critical: skip failed feeds.
			continue
		}
		all = append(all, articles...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	a.cache.Set(cacheKey, all)
	return all, nil
}

// CoinNews returns articles mentioning the given coin. The query may
// be a symbol ("BTC") or a name ("bitcoin"); both match through the
// keyword table.
func (a *Aggregator) CoinNews(ctx context.Context, coin string, limit int) ([]models.NewsArticle, error) {
	key := strings.ToLower(strings.TrimSpace(coin))
	if key == "" {
		return []models.NewsArticle{}, nil
	}

	cacheKey := fmt.Sprintf("news:coin:%s:%d", key, limit)
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	all, err := a.MarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	keywords := coinKeywords(key)
	var filtered []models.NewsArticle
	for _, art := range all {
		if matchesAny(art.Title+" "+art.Summary, keywords) {
			filtered = append(filtered, art)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	a.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// fetchRSS parses one feed and converts its items.
func (a *Aggregator) fetchRSS(ctx context.Context, src Source) ([]models.NewsArticle, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := a.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		art := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			art.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, art)
	}

	return articles, nil
}

// cleanHTML strips HTML tags from a feed summary using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// coinKeywords maps a symbol or name to the terms worth matching in
// headlines. Symbols alone are too short to search reliably, so the
// common names are included for the major coins.
func coinKeywords(coin string) []string {
	keywords := []string{coin}

	nameMap := map[string][]string{
		"btc":  {"bitcoin"},
		"eth":  {"ethereum", "ether"},
		"xrp":  {"ripple"},
		"usdt": {"tether"},
		"bnb":  {"binance coin"},
		"sol":  {"solana"},
		"ada":  {"cardano"},
		"doge": {"dogecoin"},
		"dot":  {"polkadot"},
		"ltc":  {"litecoin"},
		"avax": {"avalanche"},
		"link": {"chainlink"},
	}

	if extra, ok := nameMap[coin]; ok {
		keywords = append(keywords, extra...)
	}
	return keywords
}

// matchesAny reports whether text contains any keyword, case-insensitive.
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
