package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

// DefaultNetworkHashrate is assumed when no provider reports network stats.
var DefaultNetworkHashrate = decimal.NewFromInt(100_000_000_000)

var hundred = decimal.NewFromInt(100)

// PoolStatistics tracks the simulated pool's share of each coin's network.
type PoolStatistics struct {
	network NetworkStatsProvider
	repo    domain.PoolStatsRepository

	mu      sync.RWMutex
	stats   map[string]domain.PoolStats
	timeNow func() time.Time
	logger  *zap.Logger
}

func NewPoolStatistics(network NetworkStatsProvider, repo domain.PoolStatsRepository, logger *zap.Logger) *PoolStatistics {
	return &PoolStatistics{
		network: network,
		repo:    repo,
		stats:   make(map[string]domain.PoolStats),
		timeNow: time.Now,
		logger:  logger.With(zap.String("component", "pool_stats")),
	}
}

// Load restores previously persisted statistics.
func (p *PoolStatistics) Load(ctx context.Context) error {
	if p.repo == nil {
		return nil
	}
	list, err := p.repo.ListPoolStats(ctx)
	if err != nil {
		return fmt.Errorf("load pool stats: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range list {
		p.stats[s.Coin] = *s
	}
	return nil
}

// Update recomputes the pool's statistics for coin from the pool's own
// numbers and the current network stats.
func (p *PoolStatistics) Update(ctx context.Context, coin string, activeMiners int, poolHashrate float64) (domain.PoolStats, error) {
	symbol := domain.NormalizeSymbol(coin)
	if symbol == "" {
		return domain.PoolStats{}, fmt.Errorf("%w: coin is required", domain.ErrInvalidInput)
	}
	if activeMiners < 0 || !finite(poolHashrate) || poolHashrate < 0 {
		return domain.PoolStats{}, fmt.Errorf("%w: miners and hashrate must be non-negative", domain.ErrInvalidInput)
	}

	networkHashrate := DefaultNetworkHashrate
	var difficulty decimal.Decimal
	var height int64
	if ns, ok := p.network.GetNetworkStats(ctx, symbol); ok {
		if ns.NetworkHashrate.IsPositive() {
			networkHashrate = ns.NetworkHashrate
		}
		difficulty = ns.Difficulty
		height = ns.BlockHeight
	}

	pool := decimal.NewFromFloat(poolHashrate)
	percentage := decimal.Zero
	if networkHashrate.IsPositive() {
		percentage = pool.Div(networkHashrate).Mul(hundred)
	}
	blocks := decimal.NewFromInt(int64(domain.BlocksPerDay(symbol))).Mul(percentage).Div(hundred)

	stats := domain.PoolStats{
		Coin:                  symbol,
		ActiveMiners:          activeMiners,
		PoolHashrate:          pool,
		NetworkHashrate:       networkHashrate,
		PoolPercentage:        percentage,
		Difficulty:            difficulty,
		BlockHeight:           height,
		EstimatedBlocksPerDay: blocks,
		UpdatedAt:             p.timeNow(),
	}

	p.mu.Lock()
	p.stats[symbol] = stats
	p.mu.Unlock()

	if p.repo != nil {
		if err := p.repo.SavePoolStats(ctx, &stats); err != nil {
			p.logger.Error("Failed to persist pool stats", zap.String("coin", symbol), zap.Error(err))
		}
	}
	return stats, nil
}

func (p *PoolStatistics) Get(coin string) (domain.PoolStats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.stats[domain.NormalizeSymbol(coin)]
	return s, ok
}
