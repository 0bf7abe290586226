package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
)

// SQLiteStore persists the last known prices, network stats and pool stats.
// Decimals are stored as TEXT to keep them exact.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS price_snapshots (
			symbol TEXT PRIMARY KEY,
			price TEXT NOT NULL,
			change_24h TEXT NOT NULL,
			volume_24h TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS network_stats (
			coin TEXT PRIMARY KEY,
			difficulty TEXT NOT NULL,
			network_hashrate TEXT NOT NULL,
			block_height INTEGER NOT NULL,
			mempool_size INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pool_stats (
			coin TEXT PRIMARY KEY,
			active_miners INTEGER NOT NULL,
			pool_hashrate TEXT NOT NULL,
			network_hashrate TEXT NOT NULL,
			pool_percentage TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			block_height INTEGER NOT NULL,
			estimated_blocks_per_day TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// SnapshotRepository Implementation

// SavePrices upserts entries in one transaction. A stored row is only
// replaced by an entry that is at least as recent.
func (s *SQLiteStore) SavePrices(ctx context.Context, entries []domain.PriceEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO price_snapshots (symbol, price, change_24h, volume_24h, fetched_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(symbol) DO UPDATE SET
			  price=excluded.price,
			  change_24h=excluded.change_24h,
			  volume_24h=excluded.volume_24h,
			  fetched_at=excluded.fetched_at
			  WHERE excluded.fetched_at >= price_snapshots.fetched_at`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query,
			e.Symbol, e.Price.String(), e.Change24h.String(), e.Volume24h.String(), e.FetchedAt.UTC()); err != nil {
			return fmt.Errorf("save price %s: %w", e.Symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadPrices(ctx context.Context) ([]domain.PriceEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, price, change_24h, volume_24h, fetched_at FROM price_snapshots ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PriceEntry
	for rows.Next() {
		var e domain.PriceEntry
		var price, change, volume string
		if err := rows.Scan(&e.Symbol, &price, &change, &volume, &e.FetchedAt); err != nil {
			return nil, err
		}
		if e.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("price %s: %w", e.Symbol, err)
		}
		if e.Change24h, err = decimal.NewFromString(change); err != nil {
			return nil, fmt.Errorf("change_24h %s: %w", e.Symbol, err)
		}
		if e.Volume24h, err = decimal.NewFromString(volume); err != nil {
			return nil, fmt.Errorf("volume_24h %s: %w", e.Symbol, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) SaveNetworkStats(ctx context.Context, stats *domain.NetworkStats) error {
	query := `INSERT INTO network_stats (coin, difficulty, network_hashrate, block_height, mempool_size, source, fetched_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(coin) DO UPDATE SET
			  difficulty=excluded.difficulty,
			  network_hashrate=excluded.network_hashrate,
			  block_height=excluded.block_height,
			  mempool_size=excluded.mempool_size,
			  source=excluded.source,
			  fetched_at=excluded.fetched_at
			  WHERE excluded.fetched_at >= network_stats.fetched_at`
	_, err := s.db.ExecContext(ctx, query,
		stats.Coin, stats.Difficulty.String(), stats.NetworkHashrate.String(),
		stats.BlockHeight, stats.MempoolSize, stats.Source, stats.FetchedAt.UTC())
	return err
}

func (s *SQLiteStore) LoadNetworkStats(ctx context.Context) ([]*domain.NetworkStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT coin, difficulty, network_hashrate, block_height, mempool_size, source, fetched_at FROM network_stats ORDER BY coin`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.NetworkStats
	for rows.Next() {
		var ns domain.NetworkStats
		var difficulty, hashrate string
		if err := rows.Scan(&ns.Coin, &difficulty, &hashrate, &ns.BlockHeight, &ns.MempoolSize, &ns.Source, &ns.FetchedAt); err != nil {
			return nil, err
		}
		if ns.Difficulty, err = decimal.NewFromString(difficulty); err != nil {
			return nil, fmt.Errorf("difficulty %s: %w", ns.Coin, err)
		}
		if ns.NetworkHashrate, err = decimal.NewFromString(hashrate); err != nil {
			return nil, fmt.Errorf("network_hashrate %s: %w", ns.Coin, err)
		}
		list = append(list, &ns)
	}
	return list, rows.Err()
}

// PoolStatsRepository Implementation

func (s *SQLiteStore) SavePoolStats(ctx context.Context, stats *domain.PoolStats) error {
	query := `INSERT INTO pool_stats (coin, active_miners, pool_hashrate, network_hashrate, pool_percentage, difficulty, block_height, estimated_blocks_per_day, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(coin) DO UPDATE SET
			  active_miners=excluded.active_miners,
			  pool_hashrate=excluded.pool_hashrate,
			  network_hashrate=excluded.network_hashrate,
			  pool_percentage=excluded.pool_percentage,
			  difficulty=excluded.difficulty,
			  block_height=excluded.block_height,
			  estimated_blocks_per_day=excluded.estimated_blocks_per_day,
			  updated_at=excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		stats.Coin, stats.ActiveMiners, stats.PoolHashrate.String(), stats.NetworkHashrate.String(),
		stats.PoolPercentage.String(), stats.Difficulty.String(), stats.BlockHeight,
		stats.EstimatedBlocksPerDay.String(), stats.UpdatedAt.UTC())
	return err
}

func (s *SQLiteStore) ListPoolStats(ctx context.Context) ([]*domain.PoolStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT coin, active_miners, pool_hashrate, network_hashrate, pool_percentage, difficulty, block_height, estimated_blocks_per_day, updated_at FROM pool_stats ORDER BY coin`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.PoolStats
	for rows.Next() {
		var ps domain.PoolStats
		var pool, network, pct, difficulty, blocks string
		if err := rows.Scan(&ps.Coin, &ps.ActiveMiners, &pool, &network, &pct, &difficulty, &ps.BlockHeight, &blocks, &ps.UpdatedAt); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&ps.PoolHashrate, pool},
			{&ps.NetworkHashrate, network},
			{&ps.PoolPercentage, pct},
			{&ps.Difficulty, difficulty},
			{&ps.EstimatedBlocksPerDay, blocks},
		} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("pool stats %s: %w", ps.Coin, err)
			}
		}
		list = append(list, &ps)
	}
	return list, rows.Err()
}

// PruneBefore drops price and network snapshots older than cutoff.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, q := range []string{
		`DELETE FROM price_snapshots WHERE fetched_at < ?`,
		`DELETE FROM network_stats WHERE fetched_at < ?`,
	} {
		res, err := s.db.ExecContext(ctx, q, cutoff.UTC())
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
