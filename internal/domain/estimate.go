package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstimateRequest asks for a simulated yield.
type EstimateRequest struct {
	Coin      string  `json:"coin"`
	Hashrate  float64 `json:"hashrate"`
	Hours     float64 `json:"hours"`
	IsPremium bool    `json:"is_premium"`
}

// EstimateResult is the simulated yield and its USD value at PriceUsed.
type EstimateResult struct {
	Coins     decimal.Decimal `json:"coins"`
	USDValue  decimal.Decimal `json:"usd_value"`
	PriceUsed decimal.Decimal `json:"price_used"`
}

// Profitability is the daily economics of a rig at a given hashrate.
type Profitability struct {
	Coin         string           `json:"coin"`
	DailyRevenue decimal.Decimal  `json:"daily_revenue"`
	DailyCosts   decimal.Decimal  `json:"daily_costs"`
	DailyProfit  decimal.Decimal  `json:"daily_profit"`
	DailyCoins   decimal.Decimal  `json:"daily_coins"`
	ROIDays      *decimal.Decimal `json:"roi_days"` // nil when the rig never pays back
}

// TierComparison shows free and premium estimates side by side.
type TierComparison struct {
	Coin     string         `json:"cryptocurrency"`
	Hashrate float64        `json:"hashrate"`
	Period   string         `json:"time_period"`
	Hours    float64        `json:"hours"`
	Free     EstimateResult `json:"free_account"`
	Premium  EstimateResult `json:"premium_account"`
}

// PeriodHours maps a named period to hours. Unknown periods count as a day.
func PeriodHours(period string) (string, float64) {
	switch period {
	case "hour":
		return period, 1
	case "week":
		return period, 168
	case "month":
		return period, 720
	default:
		return "day", 24
	}
}

// PoolStats summarises the pool's share of a coin's network.
type PoolStats struct {
	Coin                  string          `json:"coin"`
	ActiveMiners          int             `json:"active_miners"`
	PoolHashrate          decimal.Decimal `json:"pool_hashrate"`
	NetworkHashrate       decimal.Decimal `json:"network_hashrate"`
	PoolPercentage        decimal.Decimal `json:"pool_percentage"`
	Difficulty            decimal.Decimal `json:"difficulty"`
	BlockHeight           int64           `json:"block_height"`
	EstimatedBlocksPerDay decimal.Decimal `json:"estimated_blocks_per_day"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
