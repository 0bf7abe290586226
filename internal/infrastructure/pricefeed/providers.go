package pricefeed

import (
	"fmt"
	"time"

	"github.com/vitos/crypto_mining_pool/internal/domain"
)

// DefaultProviderOrder is the fallback priority for network statistics.
var DefaultProviderOrder = []string{"blockchain_info", "blockchair", "etherscan", "blockcypher"}

// ProviderOptions carries endpoints and credentials for the network-stats providers.
type ProviderOptions struct {
	BlockchainInfoURL string
	BlockchairURL     string
	BlockCypherURL    string
	EtherscanURL      string
	EtherscanAPIKey   string
	Timeout           time.Duration
}

// NewNetworkStatsSources builds providers in the given priority order.
func NewNetworkStatsSources(order []string, opts ProviderOptions) ([]domain.NetworkStatsSource, error) {
	if len(order) == 0 {
		order = DefaultProviderOrder
	}

	sources := make([]domain.NetworkStatsSource, 0, len(order))
	seen := make(map[string]bool)
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "blockchain_info":
			sources = append(sources, NewBlockchainInfo(opts.BlockchainInfoURL, opts.Timeout))
		case "blockchair":
			sources = append(sources, NewBlockchair(opts.BlockchairURL, opts.Timeout))
		case "blockcypher":
			sources = append(sources, NewBlockCypher(opts.BlockCypherURL, opts.Timeout))
		case "etherscan":
			sources = append(sources, NewEtherscan(opts.EtherscanURL, opts.EtherscanAPIKey, opts.Timeout))
		default:
			return nil, fmt.Errorf("unknown network stats provider: %s", name)
		}
	}
	return sources, nil
}
