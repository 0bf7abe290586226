package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

func newTestCache(source *MockPriceSource, providers ...domain.NetworkStatsSource) (*PriceCache, *fakeClock) {
	clock := newFakeClock()
	source.clock = clock
	c := NewPriceCache(source, providers, DefaultCacheTTL, zap.NewNop())
	c.setClock(clock.Now)
	return c, clock
}

func TestPriceCache_HitWithinTTL(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"BTC": 45000}}
	cache, clock := newTestCache(src)
	ctx := context.Background()

	first := cache.GetPrices(ctx, []string{"BTC"})
	require.Contains(t, first, "BTC")

	clock.Advance(time.Second)
	second := cache.GetPrices(ctx, []string{"btc"})
	require.Contains(t, second, "BTC")

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, first["BTC"].FetchedAt, second["BTC"].FetchedAt)
}

func TestPriceCache_RefetchAfterTTL(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"BTC": 45000}}
	cache, clock := newTestCache(src)
	ctx := context.Background()

	cache.GetPrices(ctx, []string{"BTC"})
	clock.Advance(DefaultCacheTTL + time.Second)

	got := cache.GetPrices(ctx, []string{"BTC"})
	assert.Equal(t, 2, src.callCount())
	assert.Equal(t, clock.Now(), got["BTC"].FetchedAt)

	// The refreshed entry is fresh again.
	cache.GetPrices(ctx, []string{"BTC"})
	assert.Equal(t, 2, src.callCount())
}

func TestPriceCache_BatchesOnlyStaleSymbols(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"BTC": 45000, "ETH": 3200, "LTC": 150}}
	cache, _ := newTestCache(src)
	ctx := context.Background()

	cache.GetPrices(ctx, []string{"BTC"})
	got := cache.GetPrices(ctx, []string{"BTC", "ETH", "LTC", "eth"})

	assert.Len(t, got, 3)
	require.Len(t, src.Batches, 2)
	assert.Equal(t, []string{"ETH", "LTC"}, src.Batches[1])
}

func TestPriceCache_UpstreamFailureDegradesToEmpty(t *testing.T) {
	src := &MockPriceSource{Err: errUpstream}
	cache, _ := newTestCache(src)

	var got map[string]domain.PriceEntry
	assert.NotPanics(t, func() {
		got = cache.GetPrices(context.Background(), []string{"BTC", "ETH"})
	})
	assert.Empty(t, got)
}

func TestPriceCache_PartialFailureKeepsFreshEntries(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"BTC": 45000}}
	cache, _ := newTestCache(src)
	ctx := context.Background()

	cache.GetPrices(ctx, []string{"BTC"})
	src.Err = errUpstream

	got := cache.GetPrices(ctx, []string{"BTC", "XMR"})
	assert.Contains(t, got, "BTC")
	assert.NotContains(t, got, "XMR")
}

func TestPriceCache_UnknownSymbolPassesThroughUppercased(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"DOGE": 0.08}}
	cache, _ := newTestCache(src)

	got := cache.GetPrices(context.Background(), []string{"doge", "shib"})
	require.Len(t, src.Batches, 1)
	assert.Equal(t, []string{"DOGE", "SHIB"}, src.Batches[0])
	assert.Contains(t, got, "DOGE")
	assert.NotContains(t, got, "SHIB")
}

func TestPriceCache_ConcurrentAccess(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"BTC": 45000, "ETH": 3200}}
	cache, clock := newTestCache(src)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%8 == 0 {
				clock.Advance(time.Minute)
			}
			got := cache.GetPrices(ctx, []string{"BTC", "ETH"})
			assert.Len(t, got, 2)
		}(i)
	}
	wg.Wait()

	// Concurrent misses may each fetch, but never more than once per caller.
	assert.LessOrEqual(t, src.callCount(), 32)
	assert.GreaterOrEqual(t, src.callCount(), 1)
}

func TestPriceCache_NetworkStatsFallback(t *testing.T) {
	primary := &MockStatsSource{name: "primary", coins: []string{"BTC"}, err: domain.ErrNetwork}
	secondary := &MockStatsSource{name: "secondary", coins: []string{"BTC"}, stats: &domain.NetworkStats{
		Difficulty:      decimal.NewFromInt(80_000_000_000_000),
		NetworkHashrate: decimal.NewFromInt(600_000_000_000_000_000),
		BlockHeight:     840000,
		Source:          "secondary",
	}}
	ethOnly := &MockStatsSource{name: "eth", coins: []string{"ETH"}, err: domain.ErrNetwork}

	cache, _ := newTestCache(&MockPriceSource{}, ethOnly, primary, secondary)

	stats, ok := cache.GetNetworkStats(context.Background(), "btc")
	require.True(t, ok)
	assert.Equal(t, "secondary", stats.Source)
	assert.Equal(t, "BTC", stats.Coin)
	assert.Equal(t, int64(840000), stats.BlockHeight)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, ethOnly.calls)
}

func TestPriceCache_NetworkStatsCached(t *testing.T) {
	clock := newFakeClock()
	src := &MockStatsSource{name: "p", coins: []string{"LTC"}, stats: &domain.NetworkStats{BlockHeight: 1, FetchedAt: clock.Now()}}
	cache := NewPriceCache(&MockPriceSource{clock: clock}, []domain.NetworkStatsSource{src}, DefaultCacheTTL, zap.NewNop())
	cache.setClock(clock.Now)
	ctx := context.Background()

	_, ok := cache.GetNetworkStats(ctx, "LTC")
	require.True(t, ok)
	_, ok = cache.GetNetworkStats(ctx, "LTC")
	require.True(t, ok)
	assert.Equal(t, 1, src.calls)

	clock.Advance(DefaultCacheTTL)
	src.stats.FetchedAt = clock.Now()
	_, ok = cache.GetNetworkStats(ctx, "LTC")
	require.True(t, ok)
	assert.Equal(t, 2, src.calls)
}

func TestPriceCache_NetworkStatsAllFail(t *testing.T) {
	a := &MockStatsSource{name: "a", coins: []string{"XMR"}, err: domain.ErrMalformedResponse}
	b := &MockStatsSource{name: "b", coins: []string{"XMR"}, err: domain.ErrNetwork}
	cache, _ := newTestCache(&MockPriceSource{}, a, b)

	stats, ok := cache.GetNetworkStats(context.Background(), "XMR")
	assert.False(t, ok)
	assert.Equal(t, domain.NetworkStats{}, stats)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestPriceCache_ProviderTimeoutMovesOn(t *testing.T) {
	slow := &MockStatsSource{name: "slow", coins: []string{"BTC"}, block: time.Second, stats: &domain.NetworkStats{Source: "slow"}}
	fast := &MockStatsSource{name: "fast", coins: []string{"BTC"}, stats: &domain.NetworkStats{Source: "fast"}}
	cache, _ := newTestCache(&MockPriceSource{}, slow, fast)
	cache.SetProviderTimeout(20 * time.Millisecond)

	start := time.Now()
	stats, ok := cache.GetNetworkStats(context.Background(), "BTC")
	require.True(t, ok)
	assert.Equal(t, "fast", stats.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPriceCache_WarmKeepsNewest(t *testing.T) {
	src := &MockPriceSource{Prices: map[string]float64{"BTC": 45000}}
	cache, clock := newTestCache(src)

	old := domain.PriceEntry{Symbol: "btc", Price: decimal.NewFromInt(40000), FetchedAt: clock.Now().Add(-time.Minute)}
	cache.Warm([]domain.PriceEntry{old}, nil)

	got := cache.GetPrices(context.Background(), []string{"BTC"})
	assert.Equal(t, 0, src.callCount(), "warmed entry is still fresh")
	assert.True(t, got["BTC"].Price.Equal(decimal.NewFromInt(40000)))

	older := old
	older.Price = decimal.NewFromInt(1)
	older.FetchedAt = old.FetchedAt.Add(-time.Hour)
	cache.Warm([]domain.PriceEntry{older}, nil)

	cache.Warm([]domain.PriceEntry{{Symbol: "doge", Price: decimal.NewFromInt(1), FetchedAt: clock.Now()}}, nil)
	_, fresh, ok := cache.prices.Get("DOGE")
	assert.True(t, fresh && ok)

	// Only registry coins are pushed to stream clients.
	entries := cache.CachedPrices()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Price.Equal(decimal.NewFromInt(40000)))
}
