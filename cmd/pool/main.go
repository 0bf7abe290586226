package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/crypto_mining_pool/internal/config"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/logger"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/pricefeed"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/storage"
	"github.com/vitos/crypto_mining_pool/internal/usecase"
	"github.com/vitos/crypto_mining_pool/internal/web"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Init Storage
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	if n, err := store.PruneBefore(ctx, time.Now().Add(-cfg.Retention())); err != nil {
		log.Error("Failed to prune snapshots", zap.Error(err))
	} else if n > 0 {
		log.Info("Pruned old snapshots", zap.Int64("rows", n))
	}

	// 4. Init Upstreams
	prices := pricefeed.NewCoinGeckoClient(cfg.Upstream.CoinGeckoURL, cfg.Upstream.CoinGeckoAPIKey, cfg.UpstreamTimeout())
	providers, err := pricefeed.NewNetworkStatsSources(cfg.Upstream.ProviderOrder, cfg.ProviderOptions())
	if err != nil {
		log.Fatal("Invalid provider order", zap.Error(err))
	}

	// 5. Init Cache (warm from last snapshots)
	cache := usecase.NewPriceCache(prices, providers, cfg.CacheTTL(), log)
	cache.SetProviderTimeout(cfg.UpstreamTimeout())

	savedPrices, err := store.LoadPrices(ctx)
	if err != nil {
		log.Error("Failed to load price snapshots", zap.Error(err))
	}
	savedStats, err := store.LoadNetworkStats(ctx)
	if err != nil {
		log.Error("Failed to load network snapshots", zap.Error(err))
	}
	cache.Warm(savedPrices, savedStats)

	// 6. Init Services
	estimator := usecase.NewEarningsEstimator(cache, usecase.NewRandomVariance(cfg.Earnings.RandomSeed), cfg.EstimatorConfig(), log)
	pool := usecase.NewPoolStatistics(cache, store, log)
	if err := pool.Load(ctx); err != nil {
		log.Error("Failed to load pool stats", zap.Error(err))
	}

	hub := web.NewHub(log)

	// 7. Background refresh
	refresher := usecase.NewRefresher(cache, store, cfg.Refresh.Coins, cfg.RefreshInterval(), cfg.RetryInterval(), log)
	refresher.OnRefresh(hub.Broadcast)
	if cfg.Refresh.Enabled {
		refresher.Start(ctx)
	}

	// 8. Start Server
	server := web.NewServer(cfg.Server.Port, cache, estimator, pool, hub, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	// 9. Wait for Shutdown
	<-ctx.Done()

	log.Info("Shutting down...")
	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
