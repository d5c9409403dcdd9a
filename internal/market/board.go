// Package market holds the simulated market-data board.
package market

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

// Board stores per-pair market stats. The data is simulated: it is seeded at
// startup and only changes through SetPrice.
type Board struct {
	mu    sync.RWMutex
	stats map[string]domain.PairStats
	order []domain.Pair
}

// SeedEntry pair with its initial stats.
type SeedEntry struct {
	Pair  domain.Pair
	Stats domain.PairStats
}

// NewBoard creates a board from seed entries, preserving their order.
func NewBoard(seed []SeedEntry) *Board {
	b := &Board{
		stats: make(map[string]domain.PairStats, len(seed)),
		order: make([]domain.Pair, 0, len(seed)),
	}
	for _, e := range seed {
		key := e.Pair.String()
		if _, ok := b.stats[key]; ok {
			continue
		}
		b.stats[key] = e.Stats
		b.order = append(b.order, e.Pair)
	}
	return b
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultBoard returns a board seeded with the stock demo pairs.
func DefaultBoard() *Board {
	return NewBoard([]SeedEntry{
		{
			Pair: domain.Pair{From: "USDC", To: "WETH"},
			Stats: domain.PairStats{
				Price: dec("0.00048"), Change24h: dec("0.023"),
				High24h: dec("0.00050"), Low24h: dec("0.00046"), Volume: dec("42500000"),
			},
		},
		{
			Pair: domain.Pair{From: "WETH", To: "BTC"},
			Stats: domain.PairStats{
				Price: dec("0.053"), Change24h: dec("-0.012"),
				High24h: dec("0.055"), Low24h: dec("0.052"), Volume: dec("18200000"),
			},
		},
		{
			Pair: domain.Pair{From: "USDC", To: "DAI"},
			Stats: domain.PairStats{
				Price: dec("0.999"), Change24h: dec("0.001"),
				High24h: dec("1.001"), Low24h: dec("0.998"), Volume: dec("28700000"),
			},
		},
		{
			Pair: domain.Pair{From: "WETH", To: "UNI"},
			Stats: domain.PairStats{
				Price: dec("15.2"), Change24h: dec("0.018"),
				High24h: dec("15.5"), Low24h: dec("14.9"), Volume: dec("5200000"),
			},
		},
		{
			Pair: domain.Pair{From: "USDC", To: "WBTC"},
			Stats: domain.PairStats{
				Price: dec("0.000032"), Change24h: dec("-0.005"),
				High24h: dec("0.000033"), Low24h: dec("0.000031"), Volume: dec("18300000"),
			},
		},
	})
}

// Stats returns stats for the pair.
func (b *Board) Stats(pair domain.Pair) (domain.PairStats, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.stats[pair.String()]
	return s, ok
}

// Pairs returns known pairs in seed order.
func (b *Board) Pairs() []domain.Pair {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Pair, len(b.order))
	copy(out, b.order)
	return out
}

// Rate returns the conversion rate for the pair: the direct price when
// known, the reciprocal of the inverse pair otherwise, 1.0 as a last resort.
func (b *Board) Rate(pair domain.Pair) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if s, ok := b.stats[pair.String()]; ok {
		return s.Price
	}
	inverse := pair.Inverse()
	if s, ok := b.stats[inverse.String()]; ok && s.Price.GreaterThan(decimal.Zero) {
		return decimal.NewFromInt(1).Div(s.Price)
	}
	return decimal.NewFromInt(1)
}

// SetPrice overrides the current price for an existing pair.
func (b *Board) SetPrice(pair domain.Pair, price decimal.Decimal) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stats[pair.String()]
	if !ok {
		return false
	}
	s.Price = price
	b.stats[pair.String()] = s
	return true
}
