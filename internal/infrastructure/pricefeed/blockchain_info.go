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

const BlockchainInfoBaseURL = "https://api.blockchain.info"

var gigaHash = decimal.NewFromInt(1_000_000_000)

// BlockchainInfo reads Bitcoin statistics from blockchain.info.
type BlockchainInfo struct {
	baseURL string
	client  *http.Client
	timeNow func() time.Time
}

func NewBlockchainInfo(baseURL string, timeout time.Duration) *BlockchainInfo {
	if baseURL == "" {
		baseURL = BlockchainInfoBaseURL
	}
	return &BlockchainInfo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		timeNow: time.Now,
	}
}

func (b *BlockchainInfo) Name() string { return "blockchain_info" }

func (b *BlockchainInfo) Supports(coin string) bool {
	return domain.NormalizeSymbol(coin) == "BTC"
}

func (b *BlockchainInfo) FetchNetworkStats(ctx context.Context, coin string) (*domain.NetworkStats, error) {
	var data struct {
		Difficulty   *decimal.Decimal `json:"difficulty"`
		HashRate     decimal.Decimal  `json:"hash_rate"` // GH/s
		NBlocksTotal int64            `json:"n_blocks_total"`
		NTxMempool   int64            `json:"n_tx_mempool"`
	}
	if err := getJSON(ctx, b.client, b.baseURL+"/stats", &data); err != nil {
		return nil, fmt.Errorf("blockchain.info stats: %w", err)
	}
	if data.Difficulty == nil {
		return nil, fmt.Errorf("blockchain.info stats: %w: missing difficulty", domain.ErrMalformedResponse)
	}

	return &domain.NetworkStats{
		Coin:            "BTC",
		Difficulty:      *data.Difficulty,
		NetworkHashrate: data.HashRate.Mul(gigaHash),
		BlockHeight:     data.NBlocksTotal,
		MempoolSize:     data.NTxMempool,
		Source:          b.Name(),
		FetchedAt:       b.timeNow(),
	}, nil
}
