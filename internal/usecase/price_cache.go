package usecase

import (
	"context"
	"time"

	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultCacheTTL        = 300 * time.Second
	DefaultProviderTimeout = 10 * time.Second
)

// PriceProvider is the read side of the price cache used by the estimators.
type PriceProvider interface {
	GetPrices(ctx context.Context, symbols []string) map[string]domain.PriceEntry
}

// NetworkStatsProvider is the read side of the network stats cache.
type NetworkStatsProvider interface {
	GetNetworkStats(ctx context.Context, coin string) (domain.NetworkStats, bool)
}

// PriceCache serves prices and network statistics from memory and refreshes
// them from upstream sources when they go stale. Upstream failures are logged
// and degrade to missing data; they are never returned to the caller.
//
// Only the cache maps are locked, not the fetches, so two concurrent misses
// for the same key can both hit the upstream. Both results are idempotent and
// the later FetchedAt wins.
type PriceCache struct {
	source          domain.PriceSource
	providers       []domain.NetworkStatsSource
	prices          *TTLCache[domain.PriceEntry]
	stats           *TTLCache[domain.NetworkStats]
	providerTimeout time.Duration
	logger          *zap.Logger
}

func NewPriceCache(source domain.PriceSource, providers []domain.NetworkStatsSource, ttl time.Duration, logger *zap.Logger) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PriceCache{
		source:          source,
		providers:       providers,
		prices:          NewTTLCache[domain.PriceEntry](ttl),
		stats:           NewTTLCache[domain.NetworkStats](ttl),
		providerTimeout: DefaultProviderTimeout,
		logger:          logger.With(zap.String("component", "price_cache")),
	}
}

// SetProviderTimeout overrides the per-provider deadline for network stats.
func (c *PriceCache) SetProviderTimeout(d time.Duration) {
	if d > 0 {
		c.providerTimeout = d
	}
}

func (c *PriceCache) setClock(now func() time.Time) {
	c.prices.timeNow = now
	c.stats.timeNow = now
}

// GetPrices returns a PriceEntry per symbol that has data. Fresh entries come
// from the cache; everything else is fetched in one batched upstream request.
// A missing key means the price is unknown.
func (c *PriceCache) GetPrices(ctx context.Context, symbols []string) map[string]domain.PriceEntry {
	result := make(map[string]domain.PriceEntry, len(symbols))
	seen := make(map[string]bool, len(symbols))
	var missing []string

	for _, s := range symbols {
		symbol := domain.NormalizeSymbol(s)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		if entry, fresh, _ := c.prices.Get(symbol); fresh {
			result[symbol] = entry
			continue
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		return result
	}

	fetched, err := c.source.FetchPrices(ctx, missing)
	if err != nil {
		c.logger.Error("Failed to fetch prices", zap.Strings("symbols", missing), zap.Error(err))
		return result
	}

	for _, symbol := range missing {
		entry, ok := fetched[symbol]
		if !ok {
			c.logger.Warn("No price data returned", zap.String("symbol", symbol))
			continue
		}
		entry.Symbol = symbol
		c.prices.Set(symbol, entry, entry.FetchedAt)
		if latest, _, ok := c.prices.Get(symbol); ok {
			result[symbol] = latest
		}
	}
	return result
}

// GetNetworkStats returns cached stats for coin, or asks each provider that
// supports the coin in priority order until one answers with a network
// hashrate. A reply without hashrate is kept only if no later provider
// supplies one.
func (c *PriceCache) GetNetworkStats(ctx context.Context, coin string) (domain.NetworkStats, bool) {
	symbol := domain.NormalizeSymbol(coin)
	if stats, fresh, _ := c.stats.Get(symbol); fresh {
		return stats, true
	}

	tried := 0
	var partial *domain.NetworkStats
	for _, p := range c.providers {
		if !p.Supports(symbol) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		tried++

		stats, err := c.fetchStats(ctx, p, symbol)
		if err != nil {
			c.logger.Warn("Network stats provider failed",
				zap.String("provider", p.Name()), zap.String("coin", symbol), zap.Error(err))
			continue
		}
		if !stats.NetworkHashrate.IsPositive() {
			c.logger.Debug("Network stats provider reported no hashrate",
				zap.String("provider", p.Name()), zap.String("coin", symbol))
			if partial == nil {
				partial = stats
			}
			continue
		}
		return c.storeStats(symbol, stats), true
	}

	if partial != nil {
		return c.storeStats(symbol, partial), true
	}

	c.logger.Error("No network stats available",
		zap.String("coin", symbol), zap.Int("providers_tried", tried))
	return domain.NetworkStats{}, false
}

func (c *PriceCache) storeStats(symbol string, stats *domain.NetworkStats) domain.NetworkStats {
	stats.Coin = symbol
	c.stats.Set(symbol, *stats, stats.FetchedAt)
	latest, _, _ := c.stats.Get(symbol)
	return latest
}

func (c *PriceCache) fetchStats(ctx context.Context, p domain.NetworkStatsSource, coin string) (*domain.NetworkStats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.providerTimeout)
	defer cancel()
	return p.FetchNetworkStats(ctx, coin)
}

// Warm seeds the cache from persisted snapshots. Entries keep their original
// FetchedAt, so old snapshots are served only until they go stale.
func (c *PriceCache) Warm(prices []domain.PriceEntry, stats []*domain.NetworkStats) {
	for _, p := range prices {
		p.Symbol = domain.NormalizeSymbol(p.Symbol)
		c.prices.Set(p.Symbol, p, p.FetchedAt)
	}
	for _, s := range stats {
		if s == nil {
			continue
		}
		ns := *s
		ns.Coin = domain.NormalizeSymbol(ns.Coin)
		c.stats.Set(ns.Coin, ns, ns.FetchedAt)
	}
	c.logger.Info("Cache warmed from snapshots", zap.Int("prices", len(prices)), zap.Int("network_stats", len(stats)))
}

// CachedPrices returns the cached entry of every registry coin, fresh or not,
// in registry order.
func (c *PriceCache) CachedPrices() []domain.PriceEntry {
	entries := make([]domain.PriceEntry, 0, len(domain.SupportedSymbols))
	for _, symbol := range domain.SupportedSymbols {
		if e, _, ok := c.prices.Get(symbol); ok {
			entries = append(entries, e)
		}
	}
	return entries
}
