package coinlore

import "github.com/kevind700/crypto-fun/pkg/models"

// tickersResponse is the envelope of GET /tickers/.
type tickersResponse struct {
	Data []models.Ticker `json:"data"`
	Info tickersInfo     `json:"info"`
}

// tickersInfo carries the total-count hint for pagination.
type tickersInfo struct {
	CoinsNum int   `json:"coins_num"`
	Time     int64 `json:"time"`
}
