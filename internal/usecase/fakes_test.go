package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockPriceSource serves fixed prices stamped with the fake clock.
type MockPriceSource struct {
	mu      sync.Mutex
	Prices  map[string]float64
	Err     error
	Calls   int
	Batches [][]string
	clock   *fakeClock
}

func (m *MockPriceSource) FetchPrices(ctx context.Context, symbols []string) (map[string]domain.PriceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Batches = append(m.Batches, append([]string(nil), symbols...))
	if m.Err != nil {
		return nil, m.Err
	}

	out := make(map[string]domain.PriceEntry)
	for _, s := range symbols {
		p, ok := m.Prices[s]
		if !ok {
			continue
		}
		out[s] = domain.PriceEntry{Symbol: s, Price: decimal.NewFromFloat(p), FetchedAt: m.clock.Now()}
	}
	return out, nil
}

func (m *MockPriceSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockStatsSource is a scripted network stats provider.
type MockStatsSource struct {
	name  string
	coins []string
	stats *domain.NetworkStats
	err   error
	block time.Duration
	calls int
}

func (m *MockStatsSource) Name() string { return m.name }

func (m *MockStatsSource) Supports(coin string) bool {
	for _, c := range m.coins {
		if c == coin {
			return true
		}
	}
	return false
}

func (m *MockStatsSource) FetchNetworkStats(ctx context.Context, coin string) (*domain.NetworkStats, error) {
	m.calls++
	if m.block > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.block):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	s := *m.stats
	return &s, nil
}

// staticPrices is a PriceProvider with fixed answers.
type staticPrices map[string]float64

func (s staticPrices) GetPrices(ctx context.Context, symbols []string) map[string]domain.PriceEntry {
	out := make(map[string]domain.PriceEntry)
	for _, sym := range symbols {
		if p, ok := s[sym]; ok {
			out[sym] = domain.PriceEntry{Symbol: sym, Price: decimal.NewFromFloat(p)}
		}
	}
	return out
}

type fixedVariance float64

func (f fixedVariance) Variance() float64 { return float64(f) }

var errUpstream = errors.New("upstream down")
