// Package utils provides common utility functions for crypto-fun:
// ticker collection transformations and display formatting.
package utils

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kevind700/crypto-fun/pkg/models"
)

// ChangeWindow selects which percent-change field drives a sort.
type ChangeWindow string

const (
	Window1h  ChangeWindow = "1h"
	Window24h ChangeWindow = "24h"
	Window7d  ChangeWindow = "7d"
)

// ParseFloatOrZero parses a decimal string, treating anything unparseable
// (empty, placeholders like "invalid") as 0.0. Every sort and filter in
// this package funnels numeric coercion through here so the policy lives
// in one place.
func ParseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// changeValue returns the percent change for the requested window.
func changeValue(t models.Ticker, window ChangeWindow) float64 {
	switch window {
	case Window1h:
		return ParseFloatOrZero(t.PercentChange1h)
	case Window7d:
		return ParseFloatOrZero(t.PercentChange7d)
	default:
		return ParseFloatOrZero(t.PercentChange24h)
	}
}

// sortedCopy returns a new slice sorted by the given less function.
// Input is never mutated; ties keep their input order so identical
// input always yields identical output.
func sortedCopy(tickers []models.Ticker, less func(a, b models.Ticker) bool) []models.Ticker {
	out := make([]models.Ticker, len(tickers))
	copy(out, tickers)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// SortTickersByPercentChange returns a new slice ordered by descending
// percent change over the requested window. Unparseable values sort as 0.
func SortTickersByPercentChange(tickers []models.Ticker, window ChangeWindow) []models.Ticker {
	return sortedCopy(tickers, func(a, b models.Ticker) bool {
		return changeValue(a, window) > changeValue(b, window)
	})
}

// TopGainers returns the limit tickers with the highest 24h percent
// change, best first. A non-positive limit returns an empty slice.
func TopGainers(tickers []models.Ticker, limit int) []models.Ticker {
	if limit <= 0 {
		return []models.Ticker{}
	}
	return truncate(SortTickersByPercentChange(tickers, Window24h), limit)
}

// TopLosers returns the limit tickers with the lowest 24h percent change,
// most negative first. Canonical ordering is ascending-sort-take-first,
// so ties come out in input order rather than reversed.
func TopLosers(tickers []models.Ticker, limit int) []models.Ticker {
	if limit <= 0 {
		return []models.Ticker{}
	}
	asc := sortedCopy(tickers, func(a, b models.Ticker) bool {
		return changeValue(a, Window24h) < changeValue(b, Window24h)
	})
	return truncate(asc, limit)
}

// SortTickersByMarketCap returns a new slice ordered by descending USD
// market capitalization.
func SortTickersByMarketCap(tickers []models.Ticker) []models.Ticker {
	return sortedCopy(tickers, func(a, b models.Ticker) bool {
		return ParseFloatOrZero(a.MarketCapUSD) > ParseFloatOrZero(b.MarketCapUSD)
	})
}

// SortTickersByVolume returns a new slice ordered by descending 24h USD
// trading volume.
func SortTickersByVolume(tickers []models.Ticker) []models.Ticker {
	return sortedCopy(tickers, func(a, b models.Ticker) bool {
		return ParseFloatOrZero(a.Volume24) > ParseFloatOrZero(b.Volume24)
	})
}

// TopByMarketCap returns the limit largest tickers by market cap.
func TopByMarketCap(tickers []models.Ticker, limit int) []models.Ticker {
	if limit <= 0 {
		return []models.Ticker{}
	}
	return truncate(SortTickersByMarketCap(tickers), limit)
}

// TopByVolume returns the limit most traded tickers by 24h volume.
func TopByVolume(tickers []models.Ticker, limit int) []models.Ticker {
	if limit <= 0 {
		return []models.Ticker{}
	}
	return truncate(SortTickersByVolume(tickers), limit)
}

// SearchCoins returns tickers whose name, symbol, or nameid contains the
// query, case-insensitively. An empty or whitespace-only query returns an
// empty slice — never the full collection.
func SearchCoins(coins []models.Ticker, query string) []models.Ticker {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Ticker{}
	}

	matches := make([]models.Ticker, 0)
	for _, coin := range coins {
		if strings.Contains(strings.ToLower(coin.Name), q) ||
			strings.Contains(strings.ToLower(coin.Symbol), q) ||
			strings.Contains(strings.ToLower(coin.NameID), q) {
			matches = append(matches, coin)
		}
	}
	return matches
}

func truncate(tickers []models.Ticker, limit int) []models.Ticker {
	if len(tickers) > limit {
		return tickers[:limit]
	}
	return tickers
}
