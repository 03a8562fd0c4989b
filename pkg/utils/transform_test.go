package utils

import (
	"reflect"
	"testing"

	"github.com/kevind700/crypto-fun/pkg/models"
)

func tick(id, symbol, name, nameid, change24h string) models.Ticker {
	return models.Ticker{
		ID:               id,
		Symbol:           symbol,
		Name:             name,
		NameID:           nameid,
		PercentChange24h: change24h,
	}
}

func mockTickers() []models.Ticker {
	return []models.Ticker{
		{
			ID: "1", Symbol: "BTC", Name: "Bitcoin", NameID: "bitcoin", Rank: 1,
			PercentChange24h: "5.2", PercentChange1h: "1.2", PercentChange7d: "8.5",
			PriceUSD: "40000", MarketCapUSD: "800000000000", Volume24: "30000000000",
			CSupply: "19000000", TSupply: "19000000", MSupply: "21000000",
		},
		{
			ID: "2", Symbol: "ETH", Name: "Ethereum", NameID: "ethereum", Rank: 2,
			PercentChange24h: "-2.1", PercentChange1h: "-0.5", PercentChange7d: "-3.2",
			PriceUSD: "2500", MarketCapUSD: "300000000000", Volume24: "15000000000",
			CSupply: "120000000", TSupply: "120000000", MSupply: "",
		},
		{
			ID: "3", Symbol: "XRP", Name: "Ripple", NameID: "ripple", Rank: 3,
			PercentChange24h: "10.5", PercentChange1h: "2.3", PercentChange7d: "15.7",
			PriceUSD: "1.2", MarketCapUSD: "50000000000", Volume24: "5000000000",
			CSupply: "45000000000", TSupply: "100000000000", MSupply: "100000000000",
		},
	}
}

func symbols(tickers []models.Ticker) []string {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		out[i] = t.Symbol
	}
	return out
}

func TestParseFloatOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"5.2", 5.2},
		{"-3.7", -3.7},
		{" 42 ", 42},
		{"", 0},
		{"invalid", 0},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		if got := ParseFloatOrZero(tt.in); got != tt.want {
			t.Errorf("ParseFloatOrZero(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSortTickersByPercentChange(t *testing.T) {
	sorted := SortTickersByPercentChange(mockTickers(), Window24h)
	want := []string{"XRP", "BTC", "ETH"}
	if got := symbols(sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("24h order = %v, want %v", got, want)
	}

	sorted = SortTickersByPercentChange(mockTickers(), Window7d)
	if got := symbols(sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("7d order = %v, want %v", got, want)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := mockTickers()
	_ = SortTickersByPercentChange(in, Window24h)
	_ = SortTickersByMarketCap(in)
	_ = SortTickersByVolume(in)
	if got := symbols(in); !reflect.DeepEqual(got, []string{"BTC", "ETH", "XRP"}) {
		t.Errorf("input mutated: %v", got)
	}
}

func TestTopGainersOrdering(t *testing.T) {
	// Eleven records; the 15.0 record must lead, the 1.0 record must drop out.
	changes := []string{"2.5", "5.0", "10.0", "7.5", "3.0", "4.0", "6.0", "8.0", "9.0", "1.0", "15.0"}
	tickers := make([]models.Ticker, len(changes))
	for i, c := range changes {
		tickers[i] = tick(string(rune('a'+i)), "S"+c, "Coin"+c, "coin-"+c, c)
	}

	gainers := TopGainers(tickers, 10)
	if len(gainers) != 10 {
		t.Fatalf("expected 10 gainers, got %d", len(gainers))
	}
	if gainers[0].PercentChange24h != "15.0" {
		t.Errorf("first gainer change = %s, want 15.0", gainers[0].PercentChange24h)
	}
	for _, g := range gainers {
		if g.PercentChange24h == "1.0" {
			t.Error("lowest record should have been excluded")
		}
	}
}

func TestTopGainersCustomLimit(t *testing.T) {
	tickers := []models.Ticker{
		tick("1", "BTC", "Bitcoin", "bitcoin", "2.5"),
		tick("2", "ETH", "Ethereum", "ethereum", "5.0"),
		tick("3", "XRP", "Ripple", "ripple", "10.0"),
		tick("4", "LTC", "Litecoin", "litecoin", "7.5"),
		tick("5", "ADA", "Cardano", "cardano", "3.0"),
	}

	gainers := TopGainers(tickers, 3)
	want := []string{"XRP", "LTC", "ETH"}
	if got := symbols(gainers); !reflect.DeepEqual(got, want) {
		t.Errorf("top 3 = %v, want %v", got, want)
	}
}

func TestTopGainersMalformedChange(t *testing.T) {
	tickers := []models.Ticker{
		tick("1", "AAA", "Alpha", "alpha", "invalid"),
		tick("2", "BBB", "Beta", "beta", "-4.0"),
		tick("3", "CCC", "Gamma", "gamma", "3.0"),
	}

	gainers := TopGainers(tickers, 10)
	if len(gainers) != 3 {
		t.Fatalf("malformed record dropped: got %d tickers", len(gainers))
	}
	// "invalid" coerces to 0 and lands between 3.0 and -4.0.
	want := []string{"CCC", "AAA", "BBB"}
	if got := symbols(gainers); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	losers := TopLosers(tickers, 10)
	want = []string{"BBB", "AAA", "CCC"}
	if got := symbols(losers); !reflect.DeepEqual(got, want) {
		t.Errorf("losers order = %v, want %v", got, want)
	}
}

func TestTopLosersOrdering(t *testing.T) {
	tickers := []models.Ticker{
		tick("1", "BTC", "Bitcoin", "bitcoin", "-2.5"),
		tick("2", "ETH", "Ethereum", "ethereum", "-5.0"),
		tick("3", "XRP", "Ripple", "ripple", "-10.0"),
	}

	losers := TopLosers(tickers, 2)
	want := []string{"XRP", "ETH"}
	if got := symbols(losers); !reflect.DeepEqual(got, want) {
		t.Errorf("losers = %v, want %v", got, want)
	}
}

func TestTopMoversNonPositiveLimit(t *testing.T) {
	tickers := mockTickers()
	for name, fn := range map[string]func([]models.Ticker, int) []models.Ticker{
		"TopGainers":     TopGainers,
		"TopLosers":      TopLosers,
		"TopByVolume":    TopByVolume,
		"TopByMarketCap": TopByMarketCap,
	} {
		if got := fn(tickers, 0); len(got) != 0 {
			t.Errorf("%s(0) returned %d tickers, want 0", name, len(got))
		}
		if got := fn(tickers, -1); len(got) != 0 {
			t.Errorf("%s(-1) returned %d tickers, want 0", name, len(got))
		}
	}
}

func TestSortByMarketCapAndVolume(t *testing.T) {
	// Strictly descending regardless of input order.
	in := mockTickers()
	in[0], in[2] = in[2], in[0]

	byCap := SortTickersByMarketCap(in)
	want := []string{"BTC", "ETH", "XRP"}
	if got := symbols(byCap); !reflect.DeepEqual(got, want) {
		t.Errorf("by market cap = %v, want %v", got, want)
	}

	byVol := SortTickersByVolume(in)
	if got := symbols(byVol); !reflect.DeepEqual(got, want) {
		t.Errorf("by volume = %v, want %v", got, want)
	}
}

func TestSearchCoins(t *testing.T) {
	tickers := mockTickers()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by name", "Bitcoin", []string{"BTC"}},
		{"by symbol case-insensitive", "eth", []string{"ETH"}},
		{"by symbol upper", "ETH", []string{"ETH"}},
		{"by nameid substring", "ripp", []string{"XRP"}},
		{"no match", "doge", []string{}},
		{"empty query", "", []string{}},
		{"whitespace query", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := symbols(SearchCoins(tickers, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SearchCoins(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearchCoinsEmptyCollection(t *testing.T) {
	if got := SearchCoins(nil, "btc"); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestTransformsIdempotent(t *testing.T) {
	in := mockTickers()

	first := TopGainers(in, 2)
	second := TopGainers(in, 2)
	if !reflect.DeepEqual(first, second) {
		t.Error("TopGainers not idempotent")
	}

	firstSearch := SearchCoins(in, "b")
	secondSearch := SearchCoins(in, "b")
	if !reflect.DeepEqual(firstSearch, secondSearch) {
		t.Error("SearchCoins not idempotent")
	}
}
