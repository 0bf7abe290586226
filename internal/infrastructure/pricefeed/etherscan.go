package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
)

const EtherscanBaseURL = "https://api.etherscan.io/v2/api"

// Etherscan reads the latest Ethereum block number. Proof-of-stake Ethereum has
// no mining difficulty, so difficulty and hashrate are reported as zero.
type Etherscan struct {
	baseURL string
	apiKey  string
	client  *http.Client
	timeNow func() time.Time
}

func NewEtherscan(baseURL, apiKey string, timeout time.Duration) *Etherscan {
	if baseURL == "" {
		baseURL = EtherscanBaseURL
	}
	return &Etherscan{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
		timeNow: time.Now,
	}
}

func (e *Etherscan) Name() string { return "etherscan" }

func (e *Etherscan) Supports(coin string) bool {
	return domain.NormalizeSymbol(coin) == "ETH"
}

func (e *Etherscan) FetchNetworkStats(ctx context.Context, coin string) (*domain.NetworkStats, error) {
	q := url.Values{}
	q.Set("chainid", "1")
	q.Set("module", "proxy")
	q.Set("action", "eth_blockNumber")
	if e.apiKey != "" {
		q.Set("apikey", e.apiKey)
	}

	var data struct {
		Result string `json:"result"`
	}
	if err := getJSON(ctx, e.client, e.baseURL+"?"+q.Encode(), &data); err != nil {
		return nil, fmt.Errorf("etherscan block number: %w", err)
	}

	if !strings.HasPrefix(data.Result, "0x") {
		return nil, fmt.Errorf("etherscan block number: %w: %q", domain.ErrMalformedResponse, data.Result)
	}
	height, err := strconv.ParseInt(strings.TrimPrefix(data.Result, "0x"), 16, 64)
	if err != nil {
		return nil, fmt.Errorf("etherscan block number: %w: %v", domain.ErrMalformedResponse, err)
	}

	return &domain.NetworkStats{
		Coin:            "ETH",
		Difficulty:      decimal.Zero,
		NetworkHashrate: decimal.Zero,
		BlockHeight:     height,
		Source:          e.Name(),
		FetchedAt:       e.timeNow(),
	}, nil
}
