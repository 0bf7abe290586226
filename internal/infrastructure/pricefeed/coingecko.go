package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
)

const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient fetches batched spot prices from the CoinGecko simple/price endpoint.
type CoinGeckoClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	timeNow func() time.Time
}

func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
		timeNow: time.Now,
	}
}

type coinGeckoQuote struct {
	USD       *decimal.Decimal `json:"usd"`
	Change24h *decimal.Decimal `json:"usd_24h_change"`
	Volume24h *decimal.Decimal `json:"usd_24h_vol"`
}

// FetchPrices queries all symbols in a single request. Symbols CoinGecko does not
// know are simply missing from the result.
func (c *CoinGeckoClient) FetchPrices(ctx context.Context, symbols []string) (map[string]domain.PriceEntry, error) {
	if len(symbols) == 0 {
		return map[string]domain.PriceEntry{}, nil
	}

	ids := make([]string, 0, len(symbols))
	for _, s := range symbols {
		ids = append(ids, domain.CoinGeckoID(s))
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	q.Set("include_24hr_vol", "true")
	if c.apiKey != "" {
		q.Set("x_cg_demo_api_key", c.apiKey)
	}

	var data map[string]coinGeckoQuote
	if err := getJSON(ctx, c.client, c.baseURL+"/simple/price?"+q.Encode(), &data); err != nil {
		return nil, fmt.Errorf("coingecko prices: %w", err)
	}

	now := c.timeNow()
	prices := make(map[string]domain.PriceEntry, len(data))
	for id, quote := range data {
		if quote.USD == nil {
			continue
		}
		symbol := domain.SymbolForCoinGeckoID(id)
		entry := domain.PriceEntry{
			Symbol:    symbol,
			Price:     *quote.USD,
			FetchedAt: now,
		}
		if quote.Change24h != nil {
			entry.Change24h = *quote.Change24h
		}
		if quote.Volume24h != nil {
			entry.Volume24h = *quote.Volume24h
		}
		prices[symbol] = entry
	}
	return prices, nil
}
