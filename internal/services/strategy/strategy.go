// Package strategy contains the auto-trading decision heuristics.
package strategy

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/settings"
)

// MarketView read-only access to market stats.
type MarketView interface {
	Stats(pair domain.Pair) (domain.PairStats, bool)
}

// BalanceView read-only access to current balances.
type BalanceView interface {
	BalanceOf(symbol string) decimal.Decimal
}

// Evaluator proposes at most one trade per invocation. A (nil, nil) result
// means no threshold was crossed.
type Evaluator interface {
	Name() string
	Propose(market MarketView, balances BalanceView) (*domain.TradeProposal, error)
}

// descriptions in registration order, matching the chat surface.
var strategyNames = []struct {
	name        string
	description string
}{
	{"trend", "Trend following"},
	{"meanreversion", "Mean reversion"},
	{"arbitrage", "Arbitrage"},
	{"random", "Random entry"},
}

// Names returns all selectable strategy names in a stable order.
func Names() []string {
	out := make([]string, 0, len(strategyNames))
	for _, s := range strategyNames {
		out = append(out, s.name)
	}
	return out
}

// Describe returns the human-readable strategy description.
func Describe(name string) (string, bool) {
	for _, s := range strategyNames {
		if s.name == name {
			return s.description, true
		}
	}
	return "", false
}

// New builds the evaluator for the given strategy name.
func New(name string, cfg config.StrategyParams, params *settings.Settings, symbols []string, rnd *rand.Rand) (Evaluator, error) {
	switch name {
	case "trend":
		return &Trend{cfg: cfg, settings: params}, nil
	case "meanreversion":
		return &MeanReversion{cfg: cfg, settings: params}, nil
	case "random":
		return NewRandom(params, symbols, rnd), nil
	case "arbitrage":
		// listed for parity with the chat surface, no heuristic behind it
		return &noop{name: "arbitrage"}, nil
	default:
		return nil, errors.Errorf("unknown strategy: %s", name)
	}
}

// proposalAmount applies the shared sizing rule: never more than `cap`,
// never more than the risk-factor share of the source balance.
func proposalAmount(capAmount, balance, riskFactor decimal.Decimal) decimal.Decimal {
	byRisk := balance.Mul(riskFactor)
	if byRisk.LessThan(capAmount) {
		return byRisk
	}
	return capAmount
}

type noop struct {
	name string
}

func (n *noop) Name() string { return n.name }

func (n *noop) Propose(MarketView, BalanceView) (*domain.TradeProposal, error) {
	return nil, nil
}
