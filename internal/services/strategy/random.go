package strategy

import (
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/settings"
)

const (
	randomMinAmount = 10
	randomMaxAmount = 100
)

// Random picks two distinct tokens uniformly at random. The random source
// is injected so tests can seed it deterministically.
type Random struct {
	settings *settings.Settings
	symbols  []string
	rnd      *rand.Rand
}

// NewRandom creates the random-entry strategy over the given symbol set.
func NewRandom(params *settings.Settings, symbols []string, rnd *rand.Rand) *Random {
	return &Random{settings: params, symbols: symbols, rnd: rnd}
}

func (r *Random) Name() string { return "random" }

// Propose returns a random trade sized by the risk factor, nothing when the
// source balance is empty.
func (r *Random) Propose(_ MarketView, balances BalanceView) (*domain.TradeProposal, error) {
	if len(r.symbols) < 2 {
		return nil, nil
	}

	from := r.symbols[r.rnd.Intn(len(r.symbols))]
	to := from
	for to == from {
		to = r.symbols[r.rnd.Intn(len(r.symbols))]
	}

	uniform := decimal.NewFromFloat(randomMinAmount + r.rnd.Float64()*(randomMaxAmount-randomMinAmount))
	amount := proposalAmount(uniform, balances.BalanceOf(from), r.settings.RiskFactor())
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}
	return &domain.TradeProposal{From: from, To: to, Amount: amount}, nil
}
