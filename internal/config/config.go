package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"github.com/vitos/crypto_mining_pool/internal/infrastructure/pricefeed"
	"github.com/vitos/crypto_mining_pool/internal/usecase"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type Config struct {
	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Refresh struct {
		Enabled         bool     `yaml:"enabled"`
		IntervalSeconds int      `yaml:"interval_seconds"`
		RetrySeconds    int      `yaml:"retry_seconds"`
		Coins           []string `yaml:"coins"`
	} `yaml:"refresh"`
	Earnings struct {
		PremiumMultiplier float64                       `yaml:"premium_multiplier"`
		RigCost           float64                       `yaml:"rig_cost"`
		RandomSeed        uint64                        `yaml:"random_seed"`
		Rates             map[string]usecase.RewardRate `yaml:"rates"`
	} `yaml:"earnings"`
	Upstream struct {
		TimeoutSeconds    int      `yaml:"timeout_seconds"`
		CoinGeckoURL      string   `yaml:"coingecko_url"`
		CoinGeckoAPIKey   string   `yaml:"coingecko_api_key"`
		ProviderOrder     []string `yaml:"provider_order"`
		BlockchainInfoURL string   `yaml:"blockchain_info_url"`
		BlockchairURL     string   `yaml:"blockchair_url"`
		BlockCypherURL    string   `yaml:"blockcypher_url"`
		EtherscanURL      string   `yaml:"etherscan_url"`
		EtherscanAPIKey   string   `yaml:"etherscan_api_key"`
	} `yaml:"upstream"`
	Storage struct {
		Path           string `yaml:"path"`
		RetentionHours int    `yaml:"retention_hours"`
	} `yaml:"storage"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Load reads the YAML file at path, applies environment overrides (a .env file
// in the working directory is honoured) and fills in defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if p := os.Getenv("POOL_CONFIG"); p != "" {
		path = p
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ETHERSCAN_API_KEY"); v != "" {
		c.Upstream.EtherscanAPIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Upstream.CoinGeckoAPIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() error {
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = int(usecase.DefaultCacheTTL / time.Second)
	}
	if c.Refresh.IntervalSeconds <= 0 {
		c.Refresh.IntervalSeconds = int(usecase.DefaultRefreshInterval / time.Second)
	}
	if c.Refresh.RetrySeconds <= 0 {
		c.Refresh.RetrySeconds = int(usecase.DefaultRetryInterval / time.Second)
	}
	if len(c.Refresh.Coins) == 0 {
		c.Refresh.Coins = append([]string(nil), domain.SupportedSymbols...)
	}
	for i := range c.Refresh.Coins {
		c.Refresh.Coins[i] = domain.NormalizeSymbol(c.Refresh.Coins[i])
	}

	if c.Earnings.PremiumMultiplier <= 0 {
		c.Earnings.PremiumMultiplier = usecase.DefaultPremiumMultiplier
	}
	if c.Earnings.RigCost <= 0 {
		c.Earnings.RigCost = usecase.DefaultRigCost
	}
	rates := usecase.DefaultRewardRates()
	for symbol, r := range c.Earnings.Rates {
		if r.BaseRate < 0 || r.DifficultyFactor < 0 {
			return fmt.Errorf("earnings rate for %s must be non-negative", symbol)
		}
		if r.DifficultyFactor == 0 {
			r.DifficultyFactor = domain.DefaultDifficultyFactor
		}
		rates[domain.NormalizeSymbol(symbol)] = r
	}
	c.Earnings.Rates = rates

	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = int(pricefeed.DefaultTimeout / time.Second)
	}
	if len(c.Upstream.ProviderOrder) == 0 {
		c.Upstream.ProviderOrder = append([]string(nil), pricefeed.DefaultProviderOrder...)
	}
	for i := range c.Upstream.ProviderOrder {
		c.Upstream.ProviderOrder[i] = strings.ToLower(strings.TrimSpace(c.Upstream.ProviderOrder[i]))
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "pool.db"
	}
	if c.Storage.RetentionHours <= 0 {
		c.Storage.RetentionHours = 24
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}

func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.Refresh.RetrySeconds) * time.Second
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionHours) * time.Hour
}

// ProviderOptions maps the upstream section onto pricefeed options.
func (c *Config) ProviderOptions() pricefeed.ProviderOptions {
	return pricefeed.ProviderOptions{
		BlockchainInfoURL: c.Upstream.BlockchainInfoURL,
		BlockchairURL:     c.Upstream.BlockchairURL,
		BlockCypherURL:    c.Upstream.BlockCypherURL,
		EtherscanURL:      c.Upstream.EtherscanURL,
		EtherscanAPIKey:   c.Upstream.EtherscanAPIKey,
		Timeout:           c.UpstreamTimeout(),
	}
}

func (c *Config) EstimatorConfig() usecase.EstimatorConfig {
	return usecase.EstimatorConfig{
		Rates:             c.Earnings.Rates,
		PremiumMultiplier: c.Earnings.PremiumMultiplier,
		RigCost:           c.Earnings.RigCost,
	}
}
