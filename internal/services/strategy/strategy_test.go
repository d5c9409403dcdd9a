package strategy

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/settings"
)

type fakeMarket struct {
	stats map[string]domain.PairStats
}

func (f *fakeMarket) Stats(pair domain.Pair) (domain.PairStats, bool) {
	s, ok := f.stats[pair.String()]
	return s, ok
}

type fakeBalances struct {
	balances map[string]decimal.Decimal
}

func (f *fakeBalances) BalanceOf(symbol string) decimal.Decimal {
	return f.balances[symbol]
}

func testStrategyCfg() config.StrategyParams {
	return config.StrategyParams{
		CanonicalPair:      domain.Pair{From: "USDC", To: "WETH"},
		TrendBuyThreshold:  decimal.RequireFromString("0.02"),
		TrendSellThreshold: decimal.RequireFromString("-0.01"),
		MeanRevLowBand:     decimal.RequireFromString("0.98"),
		MeanRevHighBand:    decimal.RequireFromString("1.02"),
		MaxSellAmount:      decimal.RequireFromString("0.1"),
	}
}

func testSettings() *settings.Settings {
	return settings.New(config.TradingParams{
		DefaultTradeAmount: decimal.NewFromInt(100),
		RiskFactor:         decimal.RequireFromString("0.02"),
	})
}

func marketWithChange(change string) *fakeMarket {
	return &fakeMarket{stats: map[string]domain.PairStats{
		"USDC_WETH": {
			Price:     decimal.RequireFromString("0.00048"),
			Change24h: decimal.RequireFromString(change),
			High24h:   decimal.RequireFromString("0.00050"),
			Low24h:    decimal.RequireFromString("0.00046"),
		},
	}}
}

func richBalances() *fakeBalances {
	return &fakeBalances{balances: map[string]decimal.Decimal{
		"USDC": decimal.NewFromInt(10000),
		"WETH": decimal.NewFromInt(5),
	}}
}

func TestTrendBuysOnStrongRise(t *testing.T) {
	ev := &Trend{cfg: testStrategyCfg(), settings: testSettings()}

	proposal, err := ev.Propose(marketWithChange("0.025"), richBalances())
	require.NoError(t, err)
	require.NotNil(t, proposal)
	require.Equal(t, "USDC", proposal.From)
	require.Equal(t, "WETH", proposal.To)
	// min(default 100, 10000 * 0.02) = 100
	require.True(t, proposal.Amount.Equal(decimal.NewFromInt(100)))
}

func TestTrendSellsOnDrop(t *testing.T) {
	ev := &Trend{cfg: testStrategyCfg(), settings: testSettings()}

	proposal, err := ev.Propose(marketWithChange("-0.02"), richBalances())
	require.NoError(t, err)
	require.NotNil(t, proposal)
	require.Equal(t, "WETH", proposal.From)
	require.Equal(t, "USDC", proposal.To)
	// min(max sell 0.1, 5 * 0.02) = 0.1
	require.True(t, proposal.Amount.Equal(decimal.RequireFromString("0.1")))
}

func TestTrendHoldsInsideBands(t *testing.T) {
	ev := &Trend{cfg: testStrategyCfg(), settings: testSettings()}

	proposal, err := ev.Propose(marketWithChange("0.0"), richBalances())
	require.NoError(t, err)
	require.Nil(t, proposal)
}

func TestTrendNoPairData(t *testing.T) {
	ev := &Trend{cfg: testStrategyCfg(), settings: testSettings()}

	proposal, err := ev.Propose(&fakeMarket{stats: map[string]domain.PairStats{}}, richBalances())
	require.NoError(t, err)
	require.Nil(t, proposal)
}

func TestTrendEmptyBalanceProposesNothing(t *testing.T) {
	ev := &Trend{cfg: testStrategyCfg(), settings: testSettings()}

	empty := &fakeBalances{balances: map[string]decimal.Decimal{}}
	proposal, err := ev.Propose(marketWithChange("0.025"), empty)
	require.NoError(t, err)
	require.Nil(t, proposal)
}

func meanRevMarket(price string) *fakeMarket {
	// mean = (0.00050 + 0.00046) / 2 = 0.00048
	m := marketWithChange("0.0")
	s := m.stats["USDC_WETH"]
	s.Price = decimal.RequireFromString(price)
	m.stats["USDC_WETH"] = s
	return m
}

func TestMeanReversionBuysBelowLowerBand(t *testing.T) {
	ev := &MeanReversion{cfg: testStrategyCfg(), settings: testSettings()}

	// lower band = 0.00048 * 0.98 = 0.0004704
	proposal, err := ev.Propose(meanRevMarket("0.00046"), richBalances())
	require.NoError(t, err)
	require.NotNil(t, proposal)
	require.Equal(t, "USDC", proposal.From)
	require.Equal(t, "WETH", proposal.To)
}

func TestMeanReversionSellsAboveUpperBand(t *testing.T) {
	ev := &MeanReversion{cfg: testStrategyCfg(), settings: testSettings()}

	// upper band = 0.00048 * 1.02 = 0.0004896
	proposal, err := ev.Propose(meanRevMarket("0.00050"), richBalances())
	require.NoError(t, err)
	require.NotNil(t, proposal)
	require.Equal(t, "WETH", proposal.From)
	require.Equal(t, "USDC", proposal.To)
}

func TestMeanReversionHoldsInsideBands(t *testing.T) {
	ev := &MeanReversion{cfg: testStrategyCfg(), settings: testSettings()}

	proposal, err := ev.Propose(meanRevMarket("0.00048"), richBalances())
	require.NoError(t, err)
	require.Nil(t, proposal)
}

func TestRandomProposesDistinctTokens(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ev := NewRandom(testSettings(), []string{"USDC", "WETH", "DAI"}, rnd)

	balances := &fakeBalances{balances: map[string]decimal.Decimal{
		"USDC": decimal.NewFromInt(10000),
		"WETH": decimal.NewFromInt(10000),
		"DAI":  decimal.NewFromInt(10000),
	}}

	for i := 0; i < 20; i++ {
		proposal, err := ev.Propose(nil, balances)
		require.NoError(t, err)
		require.NotNil(t, proposal)
		require.NotEqual(t, proposal.From, proposal.To)
		require.True(t, proposal.Amount.GreaterThan(decimal.Zero))
	}
}

func TestRandomEmptyBalanceProposesNothing(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ev := NewRandom(testSettings(), []string{"USDC", "WETH"}, rnd)

	proposal, err := ev.Propose(nil, &fakeBalances{balances: map[string]decimal.Decimal{}})
	require.NoError(t, err)
	require.Nil(t, proposal)
}

func TestNewFactoryAndNames(t *testing.T) {
	require.Equal(t, []string{"trend", "meanreversion", "arbitrage", "random"}, Names())

	description, ok := Describe("meanreversion")
	require.True(t, ok)
	require.Equal(t, "Mean reversion", description)

	for _, name := range Names() {
		ev, err := New(name, testStrategyCfg(), testSettings(), []string{"USDC", "WETH"}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		require.Equal(t, name, ev.Name())
	}

	_, err := New("martingale", testStrategyCfg(), testSettings(), nil, nil)
	require.Error(t, err)
}

func TestArbitrageIsNoop(t *testing.T) {
	ev, err := New("arbitrage", testStrategyCfg(), testSettings(), nil, nil)
	require.NoError(t, err)

	proposal, err := ev.Propose(marketWithChange("0.5"), richBalances())
	require.NoError(t, err)
	require.Nil(t, proposal)
}
