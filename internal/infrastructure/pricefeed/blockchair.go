package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
)

const BlockchairBaseURL = "https://api.blockchair.com"

var blockchairChains = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"LTC": "litecoin",
	"XMR": "monero",
}

// Blockchair reads chain statistics for several coins from api.blockchair.com.
type Blockchair struct {
	baseURL string
	client  *http.Client
	timeNow func() time.Time
}

func NewBlockchair(baseURL string, timeout time.Duration) *Blockchair {
	if baseURL == "" {
		baseURL = BlockchairBaseURL
	}
	return &Blockchair{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		timeNow: time.Now,
	}
}

func (b *Blockchair) Name() string { return "blockchair" }

func (b *Blockchair) Supports(coin string) bool {
	_, ok := blockchairChains[domain.NormalizeSymbol(coin)]
	return ok
}

func (b *Blockchair) FetchNetworkStats(ctx context.Context, coin string) (*domain.NetworkStats, error) {
	symbol := domain.NormalizeSymbol(coin)
	chain, ok := blockchairChains[symbol]
	if !ok {
		return nil, fmt.Errorf("blockchair: %w: %s", domain.ErrUnsupportedCoin, symbol)
	}

	var data struct {
		Data *struct {
			Blocks              int64           `json:"blocks"`
			Difficulty          decimal.Decimal `json:"difficulty"`
			Hashrate24h         decimal.Decimal `json:"hashrate_24h"` // H/s, quoted
			MempoolTransactions int64           `json:"mempool_transactions"`
		} `json:"data"`
	}
	if err := getJSON(ctx, b.client, b.baseURL+"/"+chain+"/stats", &data); err != nil {
		return nil, fmt.Errorf("blockchair %s stats: %w", chain, err)
	}
	if data.Data == nil || data.Data.Blocks <= 0 {
		return nil, fmt.Errorf("blockchair %s stats: %w: missing block count", chain, domain.ErrMalformedResponse)
	}

	return &domain.NetworkStats{
		Coin:            symbol,
		Difficulty:      data.Data.Difficulty,
		NetworkHashrate: data.Data.Hashrate24h,
		BlockHeight:     data.Data.Blocks,
		MempoolSize:     data.Data.MempoolTransactions,
		Source:          b.Name(),
		FetchedAt:       b.timeNow(),
	}, nil
}
