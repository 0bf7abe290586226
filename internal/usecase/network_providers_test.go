package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/pricefeed"
	"go.uber.org/zap"
)

const blockchairStats = `{"data":{"blocks":2700000,"difficulty":40000000,"hashrate_24h":"1500000000000000","mempool_transactions":12}}`

// newUpstream serves every default provider from one server. Handlers not
// listed in routes answer 500.
func newUpstream(t *testing.T, routes map[string]string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDefaultProviderCache(t *testing.T, srv *httptest.Server) *PriceCache {
	sources, err := pricefeed.NewNetworkStatsSources(nil, pricefeed.ProviderOptions{
		BlockchainInfoURL: srv.URL,
		BlockchairURL:     srv.URL,
		BlockCypherURL:    srv.URL,
		EtherscanURL:      srv.URL,
		Timeout:           2 * time.Second,
	})
	require.NoError(t, err)
	return NewPriceCache(&MockPriceSource{}, sources, DefaultCacheTTL, zap.NewNop())
}

func TestDefaultProviders_PrimaryFailureFallsBackToFullStats(t *testing.T) {
	srv := newUpstream(t, map[string]string{
		"/bitcoin/stats":  blockchairStats,
		"/litecoin/stats": blockchairStats,
		"/btc/main":       `{"height":840000,"unconfirmed_count":3}`,
		"/ltc/main":       `{"height":2700000,"unconfirmed_count":3}`,
	})
	cache := newDefaultProviderCache(t, srv)
	pool := NewPoolStatistics(cache, nil, zap.NewNop())
	ctx := context.Background()

	for _, coin := range []string{"BTC", "LTC"} {
		stats, ok := cache.GetNetworkStats(ctx, coin)
		require.True(t, ok, coin)
		assert.Equal(t, "blockchair", stats.Source, coin)
		assert.Equal(t, "40000000", stats.Difficulty.String(), coin)
		assert.Equal(t, "1500000000000000", stats.NetworkHashrate.String(), coin)
	}

	ltc, err := pool.Update(ctx, "LTC", 10, 15_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, "1", ltc.PoolPercentage.String())
	assert.Equal(t, "5.76", ltc.EstimatedBlocksPerDay.String())
}

func TestDefaultProviders_HeightOnlyReplyUsedAsLastResort(t *testing.T) {
	srv := newUpstream(t, map[string]string{
		"/ltc/main": `{"height":2700000,"unconfirmed_count":3}`,
	})
	cache := newDefaultProviderCache(t, srv)
	pool := NewPoolStatistics(cache, nil, zap.NewNop())
	ctx := context.Background()

	stats, ok := cache.GetNetworkStats(ctx, "ltc")
	require.True(t, ok)
	assert.Equal(t, "blockcypher", stats.Source)
	assert.Equal(t, int64(2_700_000), stats.BlockHeight)
	assert.True(t, stats.NetworkHashrate.IsZero())

	ltc, err := pool.Update(ctx, "LTC", 1, 1_000_000_000)
	require.NoError(t, err)
	assert.True(t, ltc.NetworkHashrate.Equal(DefaultNetworkHashrate))
	assert.Equal(t, "1", ltc.PoolPercentage.String())
	assert.Equal(t, "5.76", ltc.EstimatedBlocksPerDay.String())
}

func TestDefaultProviders_OrderPrefersFullStats(t *testing.T) {
	sources, err := pricefeed.NewNetworkStatsSources(nil, pricefeed.ProviderOptions{})
	require.NoError(t, err)

	var ltcOrder []string
	for _, s := range sources {
		if s.Supports("LTC") {
			ltcOrder = append(ltcOrder, s.Name())
		}
	}
	assert.Equal(t, []string{"blockchair", "blockcypher"}, ltcOrder)
}
