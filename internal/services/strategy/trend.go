package strategy

import (
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/settings"
)

// Trend buys the quote asset after a strong 24h rise and sells it back
// after a drop, using the canonical pair only.
type Trend struct {
	cfg      config.StrategyParams
	settings *settings.Settings
}

func (t *Trend) Name() string { return "trend" }

// Propose compares the 24h change against the configured thresholds.
func (t *Trend) Propose(market MarketView, balances BalanceView) (*domain.TradeProposal, error) {
	pair := t.cfg.CanonicalPair
	stats, ok := market.Stats(pair)
	if !ok {
		return nil, nil
	}

	if stats.Change24h.GreaterThan(t.cfg.TrendBuyThreshold) {
		amount := proposalAmount(t.settings.DefaultTradeAmount(), balances.BalanceOf(pair.From), t.settings.RiskFactor())
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, nil
		}
		return &domain.TradeProposal{From: pair.From, To: pair.To, Amount: amount}, nil
	}

	if stats.Change24h.LessThan(t.cfg.TrendSellThreshold) {
		amount := proposalAmount(t.cfg.MaxSellAmount, balances.BalanceOf(pair.To), t.settings.RiskFactor())
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, nil
		}
		return &domain.TradeProposal{From: pair.To, To: pair.From, Amount: amount}, nil
	}

	return nil, nil
}
