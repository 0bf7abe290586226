package domain

import "strings"

// Coin describes a cryptocurrency the pool simulates mining for.
type Coin struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Algo        string `json:"algo"`
	CoinGeckoID string `json:"coingecko_id"`
	BlockTime   int    `json:"block_time"` // seconds

	// BaseRate is the simulated yield in coins per hashrate unit per hour.
	BaseRate float64 `json:"base_rate"`
	// DifficultyFactor is a static multiplier simulating relative difficulty.
	DifficultyFactor float64 `json:"difficulty_factor"`
	// BaseHashrate is the hashrate handed to a free-tier mining session.
	BaseHashrate float64 `json:"base_hashrate"`
}

const (
	DefaultBaseRate         = 0.00000156
	DefaultDifficultyFactor = 1.0
	DefaultBaseHashrate     = 50.0
	DefaultBlocksPerDay     = 720

	// PremiumHashrateMultiplier scales the session hashrate of premium accounts.
	PremiumHashrateMultiplier = 2.0
)

var coins = map[string]Coin{
	"BTC": {Symbol: "BTC", Name: "Bitcoin", Algo: "SHA-256", CoinGeckoID: "bitcoin", BlockTime: 600,
		BaseRate: 0.00000156, DifficultyFactor: 1.0, BaseHashrate: 50.0},
	"ETH": {Symbol: "ETH", Name: "Ethereum", Algo: "Ethash", CoinGeckoID: "ethereum", BlockTime: 15,
		BaseRate: 0.000012, DifficultyFactor: 0.8, BaseHashrate: 500.0},
	"LTC": {Symbol: "LTC", Name: "Litecoin", Algo: "Scrypt", CoinGeckoID: "litecoin", BlockTime: 150,
		BaseRate: 0.000098, DifficultyFactor: 1.2, BaseHashrate: 2500.0},
	"XMR": {Symbol: "XMR", Name: "Monero", Algo: "RandomX", CoinGeckoID: "monero", BlockTime: 120,
		BaseRate: 0.0008, DifficultyFactor: 1.5, BaseHashrate: 5000.0},
}

// SupportedSymbols lists the registry in a stable order.
var SupportedSymbols = []string{"BTC", "ETH", "LTC", "XMR"}

// NormalizeSymbol trims and upper-cases a currency code.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// LookupCoin returns the registry entry for symbol.
func LookupCoin(symbol string) (Coin, bool) {
	c, ok := coins[NormalizeSymbol(symbol)]
	return c, ok
}

// IsSupported reports whether symbol is part of the coin registry.
func IsSupported(symbol string) bool {
	_, ok := LookupCoin(symbol)
	return ok
}

// CoinGeckoID maps a symbol to its CoinGecko id. Unknown symbols are lower-cased.
func CoinGeckoID(symbol string) string {
	if c, ok := LookupCoin(symbol); ok {
		return c.CoinGeckoID
	}
	return strings.ToLower(NormalizeSymbol(symbol))
}

// SymbolForCoinGeckoID is the reverse of CoinGeckoID.
func SymbolForCoinGeckoID(id string) string {
	for _, c := range coins {
		if c.CoinGeckoID == id {
			return c.Symbol
		}
	}
	return strings.ToUpper(id)
}

// BlocksPerDay derives the expected block count from the coin's block time.
func BlocksPerDay(symbol string) int {
	c, ok := LookupCoin(symbol)
	if !ok || c.BlockTime <= 0 {
		return DefaultBlocksPerDay
	}
	return 86400 / c.BlockTime
}

// SimulatedHashrate is the hashrate assigned to a new mining session.
func SimulatedHashrate(symbol string, isPremium bool) float64 {
	base := DefaultBaseHashrate
	if c, ok := LookupCoin(symbol); ok {
		base = c.BaseHashrate
	}
	if isPremium {
		return base * PremiumHashrateMultiplier
	}
	return base
}
