package chat

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/ledger"
	"github.com/vadiminshakov/recallbot/internal/market"
	"github.com/vadiminshakov/recallbot/internal/services/executor"
	"github.com/vadiminshakov/recallbot/internal/services/scheduler"
	"github.com/vadiminshakov/recallbot/internal/session"
	"github.com/vadiminshakov/recallbot/internal/settings"
	"github.com/vadiminshakov/recallbot/internal/tokens"
	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *ledger.Ledger) {
	registry, err := tokens.NewRegistry([]domain.Token{
		{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
		{Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
	})
	require.NoError(t, err)

	bals := ledger.New(map[string]decimal.Decimal{
		"USDC": decimal.NewFromInt(10000),
		"WETH": decimal.NewFromInt(5),
	}, zap.NewNop())

	board := market.DefaultBoard()
	params := settings.New(config.TradingParams{
		DefaultTradeAmount: decimal.NewFromInt(100),
		MinTradeAmount:     decimal.NewFromInt(10),
		MaxTradeAmount:     decimal.NewFromInt(10000),
		RiskFactor:         decimal.RequireFromString("0.02"),
		TradeInterval:      time.Hour,
		AlertCheckInterval: time.Hour,
		PollInterval:       10 * time.Millisecond,
	})

	exec := executor.New(registry, bals, board, params, zap.NewNop())
	sessions := session.NewStore()
	sched := scheduler.New(exec, board, bals, sessions, params, zap.NewNop(), nil)

	cfg := config.StrategyParams{
		CanonicalPair:      domain.Pair{From: "USDC", To: "WETH"},
		TrendBuyThreshold:  decimal.RequireFromString("0.02"),
		TrendSellThreshold: decimal.RequireFromString("-0.01"),
		MeanRevLowBand:     decimal.RequireFromString("0.98"),
		MeanRevHighBand:    decimal.RequireFromString("1.02"),
		MaxSellAmount:      decimal.RequireFromString("0.1"),
	}

	rnd := rand.New(rand.NewSource(1))
	d := NewDispatcher(context.Background(), registry, bals, board, exec, sessions, sched,
		params, cfg, rnd, zap.NewNop())

	t.Cleanup(func() {
		if sched.Running() {
			_ = sched.Stop()
		}
	})
	return d, bals
}

func TestDispatchTrade(t *testing.T) {
	d, bals := newTestDispatcher(t)

	reply, exit := d.Dispatch("console", "trade usdc to weth 100")
	require.False(t, exit)
	require.Contains(t, reply, "Trade executed")
	require.Contains(t, reply, "USDC -> WETH 100")
	require.True(t, bals.BalanceOf("USDC").Equal(decimal.NewFromInt(9900)))
}

func TestDispatchTradeUnknownToken(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "trade doge to weth 100")
	require.Contains(t, reply, "Supported tokens")
	require.Contains(t, reply, "USDC, WETH, DAI")
}

func TestDispatchTradeOutOfRange(t *testing.T) {
	d, bals := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "trade usdc to weth 5")
	require.Contains(t, reply, "amount out of range")
	require.True(t, bals.BalanceOf("USDC").Equal(decimal.NewFromInt(10000)))
}

func TestDispatchBalanceAndPortfolio(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "balance")
	require.Contains(t, reply, "USDC")
	require.Contains(t, reply, "10000.0000")

	reply, _ = d.Dispatch("console", "portfolio")
	require.Contains(t, reply, "total value")
}

func TestDispatchMarketAndPrice(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "market")
	require.Contains(t, reply, "USDC_WETH")
	require.Contains(t, reply, "WETH_BTC")

	reply, _ = d.Dispatch("console", "market usdc_weth")
	require.Contains(t, reply, "0.00048")
	require.Contains(t, reply, "2.30%")

	reply, _ = d.Dispatch("console", "price usdc_weth")
	require.Contains(t, reply, "0.00048")

	reply, _ = d.Dispatch("console", "price link_aave")
	require.Contains(t, reply, "no price data")
}

func TestDispatchHistory(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "history")
	require.Contains(t, reply, "no trade history")

	d.Dispatch("console", "trade usdc to weth 100")
	reply, _ = d.Dispatch("console", "history")
	require.Contains(t, reply, "USDC->WETH")
}

func TestDispatchStrategyLifecycle(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "start")
	require.Contains(t, reply, "no strategy set")

	reply, _ = d.Dispatch("console", "strategy")
	require.Contains(t, reply, "current strategy: none")

	reply, _ = d.Dispatch("console", "strategy trend")
	require.Contains(t, reply, "strategy set: Trend following")

	reply, _ = d.Dispatch("console", "strategy martingale")
	require.Contains(t, reply, "invalid strategy")

	reply, _ = d.Dispatch("console", "start")
	require.Contains(t, reply, "auto-trading started with Trend following strategy")

	reply, _ = d.Dispatch("console", "start")
	require.Contains(t, reply, "already running")

	reply, _ = d.Dispatch("console", "status")
	require.Contains(t, reply, "ACTIVE")
	require.Contains(t, reply, "trend")

	reply, _ = d.Dispatch("console", "stop")
	require.Contains(t, reply, "auto-trading stopped")

	reply, _ = d.Dispatch("console", "stop")
	require.Contains(t, reply, "not running")
}

func TestDispatchAlerts(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "alerts add weth_btc 0.055")
	require.Contains(t, reply, "alert added: WETH_BTC @ 0.055")
	require.Contains(t, reply, "ALERT-1")

	reply, _ = d.Dispatch("console", "alerts list")
	require.Contains(t, reply, "ALERT-1")
	require.Contains(t, reply, "ACTIVE")

	reply, _ = d.Dispatch("console", "alerts remove ALERT-1")
	require.Contains(t, reply, "alert removed")

	reply, _ = d.Dispatch("console", "alerts list")
	require.Contains(t, reply, "no active alerts")

	reply, _ = d.Dispatch("console", "alerts add badpair 1")
	require.Contains(t, reply, "invalid pair")
}

func TestDispatchSettings(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "settings")
	require.Contains(t, reply, "default_trade_amount")
	require.Contains(t, reply, "risk_factor")

	reply, _ = d.Dispatch("console", "settings default_trade_amount 250")
	require.Contains(t, reply, "setting updated: default_trade_amount = 250")

	reply, _ = d.Dispatch("console", "settings slippage 1")
	require.Contains(t, reply, "unknown setting")
}

func TestDispatchTokens(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "tokens")
	require.Contains(t, reply, "USDC")
	require.Contains(t, reply, "0xA0b8...eB48")
}

func TestDispatchUnknownAndExit(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, exit := d.Dispatch("console", "make me rich")
	require.False(t, exit)
	require.Contains(t, reply, "didn't understand")

	reply, exit = d.Dispatch("console", "exit")
	require.True(t, exit)
	require.Contains(t, reply, "goodbye")
}

func TestDispatchHelp(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply, _ := d.Dispatch("console", "help")
	require.Contains(t, reply, "trade <from> to <to> <amount>")
	require.Contains(t, reply, "trend, meanreversion, arbitrage, random")
}
