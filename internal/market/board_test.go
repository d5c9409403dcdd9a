package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

func TestDefaultBoardSeedsDemoPairs(t *testing.T) {
	b := DefaultBoard()

	pairs := b.Pairs()
	require.Len(t, pairs, 5)
	require.Equal(t, "USDC_WETH", pairs[0].String())

	stats, ok := b.Stats(domain.Pair{From: "USDC", To: "WETH"})
	require.True(t, ok)
	require.True(t, stats.Price.Equal(decimal.RequireFromString("0.00048")))
	require.True(t, stats.Change24h.Equal(decimal.RequireFromString("0.023")))
}

func TestRateDirectAndInverse(t *testing.T) {
	b := DefaultBoard()

	direct := b.Rate(domain.Pair{From: "USDC", To: "WETH"})
	require.True(t, direct.Equal(decimal.RequireFromString("0.00048")))

	inverse := b.Rate(domain.Pair{From: "WETH", To: "USDC"})
	expected := decimal.NewFromInt(1).Div(decimal.RequireFromString("0.00048"))
	require.True(t, inverse.Equal(expected))
}

func TestRateUnknownPairFallsBackToOne(t *testing.T) {
	b := DefaultBoard()
	rate := b.Rate(domain.Pair{From: "LINK", To: "AAVE"})
	require.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestSetPrice(t *testing.T) {
	b := DefaultBoard()
	pair := domain.Pair{From: "USDC", To: "WETH"}

	require.True(t, b.SetPrice(pair, decimal.RequireFromString("0.00052")))
	stats, ok := b.Stats(pair)
	require.True(t, ok)
	require.True(t, stats.Price.Equal(decimal.RequireFromString("0.00052")))

	require.False(t, b.SetPrice(domain.Pair{From: "LINK", To: "AAVE"}, decimal.NewFromInt(1)))
}

func TestNewBoardSkipsDuplicatePairs(t *testing.T) {
	pair := domain.Pair{From: "USDC", To: "WETH"}
	b := NewBoard([]SeedEntry{
		{Pair: pair, Stats: domain.PairStats{Price: decimal.NewFromInt(1)}},
		{Pair: pair, Stats: domain.PairStats{Price: decimal.NewFromInt(2)}},
	})

	require.Len(t, b.Pairs(), 1)
	stats, _ := b.Stats(pair)
	require.True(t, stats.Price.Equal(decimal.NewFromInt(1)))
}

func TestPairStatsMean(t *testing.T) {
	stats := domain.PairStats{
		High24h: decimal.RequireFromString("0.00050"),
		Low24h:  decimal.RequireFromString("0.00046"),
	}
	require.True(t, stats.Mean().Equal(decimal.RequireFromString("0.00048")))
}
