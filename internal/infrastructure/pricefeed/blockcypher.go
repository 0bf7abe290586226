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

const BlockCypherBaseURL = "https://api.blockcypher.com/v1"

// BlockCypher reads the chain tip for BTC and LTC. It reports no difficulty or hashrate.
type BlockCypher struct {
	baseURL string
	client  *http.Client
	timeNow func() time.Time
}

func NewBlockCypher(baseURL string, timeout time.Duration) *BlockCypher {
	if baseURL == "" {
		baseURL = BlockCypherBaseURL
	}
	return &BlockCypher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		timeNow: time.Now,
	}
}

func (b *BlockCypher) Name() string { return "blockcypher" }

func (b *BlockCypher) Supports(coin string) bool {
	switch domain.NormalizeSymbol(coin) {
	case "BTC", "LTC":
		return true
	}
	return false
}

func (b *BlockCypher) FetchNetworkStats(ctx context.Context, coin string) (*domain.NetworkStats, error) {
	symbol := domain.NormalizeSymbol(coin)
	if !b.Supports(symbol) {
		return nil, fmt.Errorf("blockcypher: %w: %s", domain.ErrUnsupportedCoin, symbol)
	}

	var data struct {
		Height           int64 `json:"height"`
		UnconfirmedCount int64 `json:"unconfirmed_count"`
	}
	url := fmt.Sprintf("%s/%s/main", b.baseURL, strings.ToLower(symbol))
	if err := getJSON(ctx, b.client, url, &data); err != nil {
		return nil, fmt.Errorf("blockcypher %s: %w", symbol, err)
	}
	if data.Height <= 0 {
		return nil, fmt.Errorf("blockcypher %s: %w: missing height", symbol, domain.ErrMalformedResponse)
	}

	return &domain.NetworkStats{
		Coin:            symbol,
		Difficulty:      decimal.Zero,
		NetworkHashrate: decimal.Zero,
		BlockHeight:     data.Height,
		MempoolSize:     data.UnconfirmedCount,
		Source:          b.Name(),
		FetchedAt:       b.timeNow(),
	}, nil
}
