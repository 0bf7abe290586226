package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_mining_pool/internal/config"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/pricefeed"
)

// check_feeds calls every upstream directly, bypassing the cache, and reports
// which ones answer.
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	fmt.Printf("Testing price feed...\n")
	prices := pricefeed.NewCoinGeckoClient(cfg.Upstream.CoinGeckoURL, cfg.Upstream.CoinGeckoAPIKey, cfg.UpstreamTimeout())
	quotes, err := prices.FetchPrices(ctx, domain.SupportedSymbols)
	if err != nil {
		fmt.Printf("❌ CoinGecko: %v\n", err)
	} else {
		for _, s := range domain.SupportedSymbols {
			if q, ok := quotes[s]; ok {
				fmt.Printf("✅ %s: $%s (24h %s%%)\n", s, q.Price.StringFixed(2), q.Change24h.StringFixed(2))
			} else {
				fmt.Printf("❌ %s: no quote\n", s)
			}
		}
	}

	fmt.Printf("\nTesting network stats providers...\n")
	providers, err := pricefeed.NewNetworkStatsSources(cfg.Upstream.ProviderOrder, cfg.ProviderOptions())
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	for _, p := range providers {
		for _, coin := range domain.SupportedSymbols {
			if !p.Supports(coin) {
				continue
			}
			stats, err := p.FetchNetworkStats(ctx, coin)
			if err != nil {
				fmt.Printf("❌ %-16s %s: %v\n", p.Name(), coin, err)
				continue
			}
			fmt.Printf("✅ %-16s %s: height=%d difficulty=%s hashrate=%s\n",
				p.Name(), coin, stats.BlockHeight, stats.Difficulty.StringFixed(0), formatHashrate(stats.NetworkHashrate.InexactFloat64()))
		}
	}
}
