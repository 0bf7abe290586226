package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultPremiumMultiplier = 2.0
	DefaultRigCost           = 1000.0
)

// RewardRate is the simulated yield profile of one coin.
type RewardRate struct {
	BaseRate         float64 `yaml:"base_rate"`
	DifficultyFactor float64 `yaml:"difficulty_factor"`
}

// DefaultRewardRates builds the rate table from the coin registry.
func DefaultRewardRates() map[string]RewardRate {
	rates := make(map[string]RewardRate, len(domain.SupportedSymbols))
	for _, s := range domain.SupportedSymbols {
		c, _ := domain.LookupCoin(s)
		rates[s] = RewardRate{BaseRate: c.BaseRate, DifficultyFactor: c.DifficultyFactor}
	}
	return rates
}

type EstimatorConfig struct {
	Rates             map[string]RewardRate
	PremiumMultiplier float64
	RigCost           float64
}

// EarningsEstimator computes simulated mining yields:
//
//	coins = base_rate * hashrate * hours * difficulty_factor * premium * variance
//
// valued at the current cached price.
type EarningsEstimator struct {
	prices   PriceProvider
	variance VarianceSource
	cfg      EstimatorConfig
	logger   *zap.Logger
}

func NewEarningsEstimator(prices PriceProvider, variance VarianceSource, cfg EstimatorConfig, logger *zap.Logger) *EarningsEstimator {
	if cfg.Rates == nil {
		cfg.Rates = DefaultRewardRates()
	}
	if cfg.PremiumMultiplier <= 0 {
		cfg.PremiumMultiplier = DefaultPremiumMultiplier
	}
	if cfg.RigCost <= 0 {
		cfg.RigCost = DefaultRigCost
	}
	return &EarningsEstimator{
		prices:   prices,
		variance: variance,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "earnings")),
	}
}

func (e *EarningsEstimator) rate(coin string) RewardRate {
	if r, ok := e.cfg.Rates[coin]; ok {
		return r
	}
	return RewardRate{BaseRate: domain.DefaultBaseRate, DifficultyFactor: domain.DefaultDifficultyFactor}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ExpectedCoins is the yield before the variance draw. Non-positive hashrate
// or hours yield zero.
func (e *EarningsEstimator) ExpectedCoins(coin string, hashrate, hours float64, isPremium bool) decimal.Decimal {
	if hashrate <= 0 || hours <= 0 {
		return decimal.Zero
	}
	r := e.rate(domain.NormalizeSymbol(coin))
	multiplier := 1.0
	if isPremium {
		multiplier = e.cfg.PremiumMultiplier
	}
	return decimal.NewFromFloat(r.BaseRate).
		Mul(decimal.NewFromFloat(hashrate)).
		Mul(decimal.NewFromFloat(hours)).
		Mul(decimal.NewFromFloat(r.DifficultyFactor)).
		Mul(decimal.NewFromFloat(multiplier))
}

// Estimate returns the simulated yield for req. Unknown coins use the default
// Bitcoin-shaped rate; an unknown price values the yield at zero.
func (e *EarningsEstimator) Estimate(ctx context.Context, req domain.EstimateRequest) (domain.EstimateResult, error) {
	if !finite(req.Hashrate) || !finite(req.Hours) {
		return domain.EstimateResult{}, fmt.Errorf("%w: hashrate and hours must be finite", domain.ErrInvalidInput)
	}
	coin := domain.NormalizeSymbol(req.Coin)
	if coin == "" {
		return domain.EstimateResult{}, fmt.Errorf("%w: coin is required", domain.ErrInvalidInput)
	}

	raw := e.ExpectedCoins(coin, req.Hashrate, req.Hours, req.IsPremium)
	if raw.IsZero() {
		return domain.EstimateResult{Coins: decimal.Zero, USDValue: decimal.Zero, PriceUsed: decimal.Zero}, nil
	}

	coins := raw.Mul(decimal.NewFromFloat(e.variance.Variance()))

	price := decimal.Zero
	if entry, ok := e.prices.GetPrices(ctx, []string{coin})[coin]; ok {
		price = entry.Price
	} else {
		e.logger.Debug("Price unknown, valuing estimate at zero", zap.String("coin", coin))
	}

	return domain.EstimateResult{
		Coins:     coins,
		USDValue:  coins.Mul(price),
		PriceUsed: price,
	}, nil
}

// Profitability estimates one day of mining against the rig's power bill.
func (e *EarningsEstimator) Profitability(ctx context.Context, coin string, hashrate, powerWatts, electricityCost float64) (domain.Profitability, error) {
	if !finite(powerWatts) || !finite(electricityCost) || powerWatts < 0 || electricityCost < 0 {
		return domain.Profitability{}, fmt.Errorf("%w: power and electricity cost must be finite and non-negative", domain.ErrInvalidInput)
	}

	daily, err := e.Estimate(ctx, domain.EstimateRequest{Coin: coin, Hashrate: hashrate, Hours: 24})
	if err != nil {
		return domain.Profitability{}, err
	}

	costs := decimal.NewFromFloat(powerWatts).
		Div(decimal.NewFromInt(1000)).
		Mul(decimal.NewFromInt(24)).
		Mul(decimal.NewFromFloat(electricityCost))
	profit := daily.USDValue.Sub(costs)

	p := domain.Profitability{
		Coin:         domain.NormalizeSymbol(coin),
		DailyRevenue: daily.USDValue,
		DailyCosts:   costs,
		DailyProfit:  profit,
		DailyCoins:   daily.Coins,
	}
	if profit.IsPositive() {
		roi := decimal.NewFromFloat(e.cfg.RigCost).DivRound(profit, 2)
		p.ROIDays = &roi
	}
	return p, nil
}

// CompareTiers estimates a named period for both the free and premium tier.
func (e *EarningsEstimator) CompareTiers(ctx context.Context, coin string, hashrate float64, period string) (domain.TierComparison, error) {
	symbol := domain.NormalizeSymbol(coin)
	if !domain.IsSupported(symbol) {
		return domain.TierComparison{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedCoin, symbol)
	}
	period, hours := domain.PeriodHours(period)

	free, err := e.Estimate(ctx, domain.EstimateRequest{Coin: symbol, Hashrate: hashrate, Hours: hours})
	if err != nil {
		return domain.TierComparison{}, err
	}
	premium, err := e.Estimate(ctx, domain.EstimateRequest{Coin: symbol, Hashrate: hashrate, Hours: hours, IsPremium: true})
	if err != nil {
		return domain.TierComparison{}, err
	}

	return domain.TierComparison{
		Coin:     symbol,
		Hashrate: hashrate,
		Period:   period,
		Hours:    hours,
		Free:     free,
		Premium:  premium,
	}, nil
}
