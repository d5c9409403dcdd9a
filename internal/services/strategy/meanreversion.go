package strategy

import (
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/settings"
)

// MeanReversion trades the canonical pair back towards the midpoint of its
// 24h range: buy below the lower band, sell above the upper one.
type MeanReversion struct {
	cfg      config.StrategyParams
	settings *settings.Settings
}

func (m *MeanReversion) Name() string { return "meanreversion" }

// Propose compares the current price against the banded 24h mean.
func (m *MeanReversion) Propose(market MarketView, balances BalanceView) (*domain.TradeProposal, error) {
	pair := m.cfg.CanonicalPair
	stats, ok := market.Stats(pair)
	if !ok {
		return nil, nil
	}

	mean := stats.Mean()
	if mean.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	if stats.Price.LessThan(mean.Mul(m.cfg.MeanRevLowBand)) {
		amount := proposalAmount(m.settings.DefaultTradeAmount(), balances.BalanceOf(pair.From), m.settings.RiskFactor())
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, nil
		}
		return &domain.TradeProposal{From: pair.From, To: pair.To, Amount: amount}, nil
	}

	if stats.Price.GreaterThan(mean.Mul(m.cfg.MeanRevHighBand)) {
		amount := proposalAmount(m.cfg.MaxSellAmount, balances.BalanceOf(pair.To), m.settings.RiskFactor())
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, nil
		}
		return &domain.TradeProposal{From: pair.To, To: pair.From, Amount: amount}, nil
	}

	return nil, nil
}
