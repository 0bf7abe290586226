package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceEntry is a spot price snapshot for one currency.
type PriceEntry struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NetworkStats holds chain-level statistics for one coin.
type NetworkStats struct {
	Coin            string          `json:"coin"`
	Difficulty      decimal.Decimal `json:"difficulty"`
	NetworkHashrate decimal.Decimal `json:"network_hashrate"` // H/s
	BlockHeight     int64           `json:"block_height"`
	MempoolSize     int64           `json:"mempool_size"`
	Source          string          `json:"source"`
	FetchedAt       time.Time       `json:"fetched_at"`
}
