package domain

import "context"

// PriceSource fetches spot prices for several symbols in one request.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []string) (map[string]PriceEntry, error)
}

// NetworkStatsSource is one upstream provider of chain statistics.
type NetworkStatsSource interface {
	Name() string
	Supports(coin string) bool
	FetchNetworkStats(ctx context.Context, coin string) (*NetworkStats, error)
}

// SnapshotRepository persists the last known market data.
type SnapshotRepository interface {
	SavePrices(ctx context.Context, entries []PriceEntry) error
	LoadPrices(ctx context.Context) ([]PriceEntry, error)
	SaveNetworkStats(ctx context.Context, stats *NetworkStats) error
	LoadNetworkStats(ctx context.Context) ([]*NetworkStats, error)
}

// PoolStatsRepository persists pool statistics.
type PoolStatsRepository interface {
	SavePoolStats(ctx context.Context, stats *PoolStats) error
	ListPoolStats(ctx context.Context) ([]*PoolStats, error)
}
