// Package models defines the core data structures used throughout crypto-fun.
package models

// Ticker represents one cryptocurrency's market snapshot as returned by
// the Coinlore /tickers/ and /ticker/ endpoints. Monetary and percentage
// fields arrive as decimal strings and are kept that way until formatting
// time; upstream occasionally returns empty or non-numeric placeholders.
type Ticker struct {
	ID               string `json:"id"`                 // opaque identifier, unique per fetch batch
	Symbol           string `json:"symbol"`             // e.g., "BTC"
	Name             string `json:"name"`               // e.g., "Bitcoin"
	NameID           string `json:"nameid"`             // lowercase, hyphenated, e.g., "bitcoin"
	Rank             int    `json:"rank"`               // position by market cap
	PriceUSD         string `json:"price_usd"`          // current price in USD
	PriceBTC         string `json:"price_btc"`          // price in BTC
	PercentChange1h  string `json:"percent_change_1h"`  // signed percentage
	PercentChange24h string `json:"percent_change_24h"` // signed percentage
	PercentChange7d  string `json:"percent_change_7d"`  // signed percentage
	MarketCapUSD     string `json:"market_cap_usd"`     // market capitalization in USD
	Volume24         string `json:"volume24"`           // 24h volume in USD
	Volume24Native   string `json:"volume24_native"`    // 24h volume in native units
	CSupply          string `json:"csupply"`            // circulating supply
	TSupply          string `json:"tsupply"`            // total supply, may be empty
	MSupply          string `json:"msupply"`            // max supply, may be empty
}

// GlobalData represents aggregate market statistics from /global/.
// Replaced wholesale on each refresh.
type GlobalData struct {
	CoinsCount       int     `json:"coins_count"`
	ActiveMarkets    int     `json:"active_markets"`
	TotalMarketCap   float64 `json:"total_mcap"`
	TotalVolume      float64 `json:"total_volume"`
	BTCDominance     string  `json:"btc_d"`
	ETHDominance     string  `json:"eth_d"`
	MarketCapChange  string  `json:"mcap_change"`
	VolumeChange     string  `json:"volume_change"`
	AvgChangePercent float64 `json:"avg_change_percent"`
	VolumeATH        float64 `json:"volume_ath"`
	MarketCapATH     float64 `json:"mcap_ath"`
}

// Exchange represents a cryptocurrency exchange from /exchanges/.
type Exchange struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Country         string `json:"country"`
	DateLive        string `json:"date_live"`
	VolumeUSD       string `json:"volume_usd"`
	ActivePairs     int    `json:"active_pairs"`
	Pairs           string `json:"pairs"`
	ConfidenceScore string `json:"confidence_score"`
	Rank            int    `json:"rank"`
	Volume24hAdj    string `json:"volume_24h_adjusted,omitempty"`
	Trades24h       string `json:"trades_24h,omitempty"`
}

// CoinMarket represents a market where a coin trades, from /coin/markets/.
type CoinMarket struct {
	Name      string `json:"name"`  // exchange name
	Base      string `json:"base"`  // base currency symbol
	Quote     string `json:"quote"` // quote currency symbol
	Price     string `json:"price"`
	PriceUSD  string `json:"price_usd"`
	Volume    string `json:"volume"`
	VolumeUSD string `json:"volume_usd"`
	Time      int64  `json:"time"` // last update timestamp
}

// RedditStats holds Reddit community statistics for a coin.
type RedditStats struct {
	Subscribers     float64 `json:"subscribers"`
	ActiveUsers     float64 `json:"active_users"`
	PostsPerDay     float64 `json:"posts_per_day"`
	CommentsPerDay  float64 `json:"comments_per_day"`
	PostsPerHour    float64 `json:"posts_per_hour"`
	CommentsPerHour float64 `json:"comments_per_hour"`
}

// TwitterStats holds Twitter account statistics for a coin.
type TwitterStats struct {
	Followers   int    `json:"followers"`
	StatusCount int    `json:"status_count"`
	Favorites   int    `json:"favorites"`
	Lists       int    `json:"lists"`
	Following   int    `json:"following"`
	Name        string `json:"name"`
	Link        string `json:"link"`
}

// GithubStats holds repository statistics for a coin.
type GithubStats struct {
	ClosedIssues     int    `json:"closed_issues"`
	OpenPullIssues   int    `json:"open_pull_issues"`
	ClosedPullIssues int    `json:"closed_pull_issues"`
	Forks            int    `json:"forks"`
	Stars            int    `json:"stars"`
	Subscribers      int    `json:"subscribers"`
	OpenIssues       int    `json:"open_issues"`
	LastUpdate       string `json:"last_update"`
}

// SocialStats aggregates social media statistics from /coin/social_stats/.
type SocialStats struct {
	Name    string       `json:"name"`
	Symbol  string       `json:"symbol"`
	Reddit  RedditStats  `json:"reddit"`
	Twitter TwitterStats `json:"twitter"`
	Github  GithubStats  `json:"github"`
}

// MarketMetrics is a derived dashboard view of the global snapshot,
// with dominance percentages parsed into numbers.
type MarketMetrics struct {
	TotalMarketCap float64 `json:"total_market_cap"`
	TotalVolume    float64 `json:"total_volume"`
	BTCDominance   float64 `json:"btc_dominance"`
	ETHDominance   float64 `json:"eth_dominance"`
	ActiveMarkets  int     `json:"active_markets"`
	TotalCoins     int     `json:"total_coins"`
}

// ChartPoint is one synthesized point of a coin's sparkline series.
type ChartPoint struct {
	Label string  `json:"label"` // e.g., "7d", "24h", "Now"
	Price float64 `json:"price"`
}
