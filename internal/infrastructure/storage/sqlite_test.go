package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_mining_pool/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "pool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Prices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	err := store.SavePrices(ctx, []domain.PriceEntry{
		{Symbol: "BTC", Price: decimal.RequireFromString("45000.12345678"), Change24h: decimal.RequireFromString("-1.5"), Volume24h: decimal.NewFromInt(10), FetchedAt: now},
		{Symbol: "ETH", Price: decimal.NewFromInt(3200), FetchedAt: now},
	})
	require.NoError(t, err)

	// Older snapshot must not overwrite the newer row.
	err = store.SavePrices(ctx, []domain.PriceEntry{
		{Symbol: "BTC", Price: decimal.NewFromInt(1), FetchedAt: now.Add(-time.Hour)},
	})
	require.NoError(t, err)

	prices, err := store.LoadPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 2)

	assert.Equal(t, "BTC", prices[0].Symbol)
	assert.Equal(t, "45000.12345678", prices[0].Price.String())
	assert.Equal(t, "-1.5", prices[0].Change24h.String())
	assert.True(t, prices[0].FetchedAt.Equal(now))

	// Newer snapshot replaces it.
	require.NoError(t, store.SavePrices(ctx, []domain.PriceEntry{
		{Symbol: "BTC", Price: decimal.NewFromInt(46000), FetchedAt: now.Add(time.Minute)},
	}))
	prices, err = store.LoadPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "46000", prices[0].Price.String())
}

func TestSQLiteStore_NetworkStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveNetworkStats(ctx, &domain.NetworkStats{
		Coin:            "BTC",
		Difficulty:      decimal.RequireFromString("83148355189239.77"),
		NetworkHashrate: decimal.RequireFromString("600000000000000000000"),
		BlockHeight:     840000,
		MempoolSize:     12,
		Source:          "blockchair",
		FetchedAt:       now,
	}))

	list, err := store.LoadNetworkStats(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "83148355189239.77", list[0].Difficulty.String())
	assert.Equal(t, "600000000000000000000", list[0].NetworkHashrate.String())
	assert.Equal(t, int64(840000), list[0].BlockHeight)
	assert.Equal(t, "blockchair", list[0].Source)
}

func TestSQLiteStore_PoolStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stats := &domain.PoolStats{
		Coin:                  "LTC",
		ActiveMiners:          1250,
		PoolHashrate:          decimal.NewFromInt(1_000_000),
		NetworkHashrate:       decimal.NewFromInt(100_000_000),
		PoolPercentage:        decimal.NewFromInt(1),
		Difficulty:            decimal.Zero,
		BlockHeight:           2_700_000,
		EstimatedBlocksPerDay: decimal.RequireFromString("5.76"),
		UpdatedAt:             time.Now().UTC(),
	}
	require.NoError(t, store.SavePoolStats(ctx, stats))

	stats.ActiveMiners = 1300
	require.NoError(t, store.SavePoolStats(ctx, stats))

	list, err := store.ListPoolStats(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1300, list[0].ActiveMiners)
	assert.Equal(t, "5.76", list[0].EstimatedBlocksPerDay.String())
}

func TestSQLiteStore_PruneBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SavePrices(ctx, []domain.PriceEntry{
		{Symbol: "BTC", Price: decimal.NewFromInt(1), FetchedAt: now.Add(-48 * time.Hour)},
		{Symbol: "ETH", Price: decimal.NewFromInt(1), FetchedAt: now},
	}))
	require.NoError(t, store.SaveNetworkStats(ctx, &domain.NetworkStats{Coin: "BTC", FetchedAt: now.Add(-48 * time.Hour)}))

	n, err := store.PruneBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	prices, err := store.LoadPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "ETH", prices[0].Symbol)
}
