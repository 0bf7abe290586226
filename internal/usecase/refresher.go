package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultRetryInterval   = 1 * time.Minute
)

var errNoPrices = errors.New("no price data")

// Refresher keeps the price cache warm in the background. A failed cycle is
// retried after the retry interval instead of the regular one.
type Refresher struct {
	cache    *PriceCache
	repo     domain.SnapshotRepository
	coins    []string
	interval time.Duration
	retry    time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	listeners []func([]domain.PriceEntry)
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewRefresher(cache *PriceCache, repo domain.SnapshotRepository, coins []string, interval, retry time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	if len(coins) == 0 {
		coins = domain.SupportedSymbols
	}
	return &Refresher{
		cache:    cache,
		repo:     repo,
		coins:    coins,
		interval: interval,
		retry:    retry,
		logger:   logger.With(zap.String("component", "refresher")),
	}
}

// OnRefresh registers a callback invoked with the fresh prices after each
// successful cycle.
func (r *Refresher) OnRefresh(cb func([]domain.PriceEntry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, cb)
}

// Start runs the first cycle immediately and then keeps refreshing until ctx
// is cancelled or Stop is called.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	r.logger.Info("Starting price refresher",
		zap.Duration("interval", r.interval), zap.Duration("retry", r.retry), zap.Strings("coins", r.coins))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Price refresher stopped")
				return
			case <-timer.C:
			}

			next := r.interval
			if err := r.safeRefresh(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				r.logger.Error("Refresh cycle failed", zap.Error(err), zap.Duration("retry_in", r.retry))
				next = r.retry
			}
			timer.Reset(next)
		}
	}()
}

// Stop cancels the loop and waits for the running cycle to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		r.wg.Wait()
	}
}

func (r *Refresher) safeRefresh(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("refresh panic: %v", p)
		}
	}()
	return r.RefreshOnce(ctx)
}

// RefreshOnce refreshes prices and network stats for every tracked coin and
// persists the result.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	start := time.Now()

	prices := r.cache.GetPrices(ctx, r.coins)
	if len(prices) == 0 {
		return errNoPrices
	}

	entries := make([]domain.PriceEntry, 0, len(prices))
	for _, c := range r.coins {
		if p, ok := prices[domain.NormalizeSymbol(c)]; ok {
			entries = append(entries, p)
		}
	}

	var stats []*domain.NetworkStats
	for _, c := range r.coins {
		if s, ok := r.cache.GetNetworkStats(ctx, c); ok {
			stats = append(stats, &s)
		}
	}

	if r.repo != nil {
		if err := r.repo.SavePrices(ctx, entries); err != nil {
			return fmt.Errorf("save prices: %w", err)
		}
		for _, s := range stats {
			if err := r.repo.SaveNetworkStats(ctx, s); err != nil {
				return fmt.Errorf("save network stats %s: %w", s.Coin, err)
			}
		}
	}

	r.mu.Lock()
	listeners := append([]func([]domain.PriceEntry){}, r.listeners...)
	r.mu.Unlock()
	for _, cb := range listeners {
		cb(entries)
	}

	r.logger.Info("Refreshed market data",
		zap.Int("prices", len(entries)), zap.Int("network_stats", len(stats)), zap.Duration("took", time.Since(start)))
	return nil
}
