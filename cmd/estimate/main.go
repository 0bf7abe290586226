package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_mining_pool/internal/config"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/pricefeed"
	"github.com/vitos/crypto_mining_pool/internal/usecase"
	"go.uber.org/zap"
)

// estimate prints free and premium earnings for a hashrate using live prices.
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	coin := flag.String("coin", "BTC", "coin symbol")
	hashrate := flag.Float64("hashrate", 0, "hashrate units (defaults to the simulated session hashrate)")
	period := flag.String("period", "day", "hour, day, week or month")
	watts := flag.Float64("watts", 0, "rig power draw for the profitability report")
	kwh := flag.Float64("kwh", 0.10, "electricity cost per kWh")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	prices := pricefeed.NewCoinGeckoClient(cfg.Upstream.CoinGeckoURL, cfg.Upstream.CoinGeckoAPIKey, cfg.UpstreamTimeout())
	cache := usecase.NewPriceCache(prices, nil, cfg.CacheTTL(), zap.NewNop())
	estimator := usecase.NewEarningsEstimator(cache, usecase.NewRandomVariance(cfg.Earnings.RandomSeed), cfg.EstimatorConfig(), zap.NewNop())

	h := *hashrate
	if h == 0 {
		h = domain.SimulatedHashrate(*coin, false)
	}

	cmp, err := estimator.CompareTiers(ctx, *coin, h, *period)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s @ %.2f for %s (%.0fh), price $%s\n", cmp.Coin, cmp.Hashrate, cmp.Period, cmp.Hours, cmp.Free.PriceUsed.StringFixed(2))
	fmt.Printf("  Free:    %s coins  $%s\n", cmp.Free.Coins.String(), cmp.Free.USDValue.StringFixed(2))
	fmt.Printf("  Premium: %s coins  $%s\n", cmp.Premium.Coins.String(), cmp.Premium.USDValue.StringFixed(2))

	if *watts <= 0 {
		return
	}
	p, err := estimator.Profitability(ctx, *coin, h, *watts, *kwh)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDaily revenue $%s, costs $%s, profit $%s\n",
		p.DailyRevenue.StringFixed(2), p.DailyCosts.StringFixed(2), p.DailyProfit.StringFixed(2))
	if p.ROIDays != nil {
		fmt.Printf("ROI in %s days\n", p.ROIDays.StringFixed(2))
	} else {
		fmt.Println("Not profitable at this power cost")
	}
}
