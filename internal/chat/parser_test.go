package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTrade(t *testing.T) {
	cmd := Parse("trade usdc to weth 100")
	require.Equal(t, KindTrade, cmd.Kind)
	require.Equal(t, []string{"USDC", "WETH", "100"}, cmd.Params)

	cmd = Parse("TRADE WETH to DAI 0.5")
	require.Equal(t, KindTrade, cmd.Kind)
	require.Equal(t, []string{"WETH", "DAI", "0.5"}, cmd.Params)
}

func TestParseMarketAndPrice(t *testing.T) {
	cmd := Parse("market usdc_weth")
	require.Equal(t, KindMarket, cmd.Kind)
	require.Equal(t, []string{"USDC_WETH"}, cmd.Params)

	cmd = Parse("market")
	require.Equal(t, KindMarket, cmd.Kind)
	require.Empty(t, cmd.Params)

	cmd = Parse("price weth_btc")
	require.Equal(t, KindPrice, cmd.Kind)
	require.Equal(t, []string{"WETH_BTC"}, cmd.Params)
}

func TestParseStrategy(t *testing.T) {
	cmd := Parse("strategy trend")
	require.Equal(t, KindStrategy, cmd.Kind)
	require.Equal(t, []string{"trend"}, cmd.Params)

	cmd = Parse("strategy")
	require.Equal(t, KindStrategy, cmd.Kind)
	require.Empty(t, cmd.Params)
}

func TestParseAlerts(t *testing.T) {
	cmd := Parse("alerts add weth_btc 0.055")
	require.Equal(t, KindAlerts, cmd.Kind)
	require.Equal(t, []string{"add", "WETH_BTC 0.055"}, cmd.Params)

	cmd = Parse("alerts remove alert-1")
	require.Equal(t, KindAlerts, cmd.Kind)
	require.Equal(t, []string{"remove", "ALERT-1"}, cmd.Params)

	cmd = Parse("alerts list")
	require.Equal(t, KindAlerts, cmd.Kind)
	require.Equal(t, []string{"list", ""}, cmd.Params)
}

func TestParseBareCommands(t *testing.T) {
	cases := map[string]Kind{
		"help":      KindHelp,
		"balance":   KindBalance,
		"history":   KindHistory,
		"portfolio": KindPortfolio,
		"tokens":    KindTokens,
		"settings":  KindSettings,
		"start":     KindStart,
		"stop":      KindStop,
		"status":    KindStatus,
		"exit":      KindExit,
	}
	for input, kind := range cases {
		cmd := Parse(input)
		require.Equal(t, kind, cmd.Kind, "input %q", input)
	}
}

func TestParseStatusNotSwallowedByStop(t *testing.T) {
	cmd := Parse("status")
	require.Equal(t, KindStatus, cmd.Kind)
}

func TestParseSettingsWithArgs(t *testing.T) {
	cmd := Parse("settings default_trade_amount 250")
	require.Equal(t, KindSettings, cmd.Kind)
	require.Equal(t, "default_trade_amount 250", cmd.Raw)
}

func TestParseUnknown(t *testing.T) {
	cmd := Parse("make me rich")
	require.Equal(t, KindUnknown, cmd.Kind)
	require.Equal(t, "make me rich", cmd.Raw)
}

func TestParseTrimsWhitespace(t *testing.T) {
	cmd := Parse("   balance   ")
	require.Equal(t, KindBalance, cmd.Kind)
}
