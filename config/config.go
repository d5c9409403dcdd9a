// Package config loads chatbot configuration from a YAML file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	// SandboxBaseURL non-production trading environment.
	SandboxBaseURL = "https://api.sandbox.competitions.recall.network"
	// ProductionBaseURL production trading environment.
	ProductionBaseURL = "https://api.competitions.recall.network"

	apiKeyEnv = "RECALL_API_KEY"
)

// TradingParams tunable trading parameters. The settings command mutates a
// copy of these at runtime.
type TradingParams struct {
	DefaultTradeAmount decimal.Decimal
	MinTradeAmount     decimal.Decimal
	MaxTradeAmount     decimal.Decimal
	RiskFactor         decimal.Decimal
	StopLoss           decimal.Decimal
	TakeProfit         decimal.Decimal
	TradeInterval      time.Duration
	AlertCheckInterval time.Duration
	PollInterval       time.Duration
}

// StrategyParams strategy thresholds. Defaults match the stock heuristics.
type StrategyParams struct {
	CanonicalPair      domain.Pair
	TrendBuyThreshold  decimal.Decimal
	TrendSellThreshold decimal.Decimal
	MeanRevLowBand     decimal.Decimal
	MeanRevHighBand    decimal.Decimal
	MaxSellAmount      decimal.Decimal
}

// Config full chatbot configuration.
type Config struct {
	Sandbox  bool
	Live     bool
	APIKey   string
	BaseURL  string
	LogFile  string
	StateDir string

	Tokens          []domain.Token
	InitialBalances map[string]decimal.Decimal

	Trading  TradingParams
	Strategy StrategyParams
}

// ConfigTmp mirrors Config with yaml-friendly field types. The setup wizard
// marshals it and Get unmarshals it back.
type ConfigTmp struct {
	Sandbox  *bool  `yaml:"sandbox,omitempty"`
	Live     bool   `yaml:"live,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
	StateDir string `yaml:"state_dir,omitempty"`

	DefaultTradeAmountStr string `yaml:"default_trade_amount,omitempty"`
	MinTradeAmountStr     string `yaml:"min_trade_amount,omitempty"`
	MaxTradeAmountStr     string `yaml:"max_trade_amount,omitempty"`
	RiskFactorStr         string `yaml:"risk_factor,omitempty"`
	StopLossStr           string `yaml:"stop_loss,omitempty"`
	TakeProfitStr         string `yaml:"take_profit,omitempty"`
	TradeIntervalStr      string `yaml:"trade_interval,omitempty"`
	AlertCheckIntervalStr string `yaml:"alert_check_interval,omitempty"`
	PollIntervalStr       string `yaml:"poll_interval,omitempty"`

	CanonicalPair string `yaml:"canonical_pair,omitempty"`

	Tokens map[string]string `yaml:"tokens,omitempty"`
}

// Get builds the configuration from --config YAML or CLI flags.
// RECALL_API_KEY is read from the environment (after a best-effort .env
// load) and is required when live mode is on.
func Get() (Config, error) {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to yaml config")
	sandbox := flag.Bool("sandbox", true, "use the sandbox trading environment")
	live := flag.Bool("live", false, "post trades to the real API instead of simulating")
	flag.Parse()

	conf := defaults()

	if *configPath != "" {
		if err := applyYaml(*configPath, &conf); err != nil {
			return Config{}, err
		}
	} else {
		conf.Sandbox = *sandbox
		conf.Live = *live
	}

	conf.BaseURL = ProductionBaseURL
	if conf.Sandbox {
		conf.BaseURL = SandboxBaseURL
	}

	conf.APIKey = os.Getenv(apiKeyEnv)
	if conf.Live && conf.APIKey == "" {
		return Config{}, fmt.Errorf("%s environment variable must be set in live mode", apiKeyEnv)
	}

	return conf, nil
}

func defaults() Config {
	return Config{
		Sandbox:  true,
		LogFile:  "recallbot.log",
		StateDir: "./state",
		Tokens: []domain.Token{
			{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
			{Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
			{Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
			{Symbol: "WBTC", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"},
			{Symbol: "UNI", Address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"},
			{Symbol: "LINK", Address: "0x514910771AF9Ca656af840dff83E8264EcF986CA"},
			{Symbol: "AAVE", Address: "0x7Fc66500c84A76Ad7e9c93437bFc5Ac33E2DDaE9"},
			{Symbol: "MATIC", Address: "0x7D1AfA7B718fb893dB30A3aBc0Cfc608AaCfeBB0"},
		},
		InitialBalances: map[string]decimal.Decimal{
			"USDC": decimal.NewFromInt(10000),
			"WETH": decimal.NewFromInt(5),
			"DAI":  decimal.NewFromInt(5000),
			"WBTC": decimal.RequireFromString("0.25"),
		},
		Trading: TradingParams{
			DefaultTradeAmount: decimal.NewFromInt(100),
			MinTradeAmount:     decimal.NewFromInt(10),
			MaxTradeAmount:     decimal.NewFromInt(10000),
			RiskFactor:         decimal.RequireFromString("0.02"),
			StopLoss:           decimal.RequireFromString("0.05"),
			TakeProfit:         decimal.RequireFromString("0.10"),
			TradeInterval:      5 * time.Minute,
			AlertCheckInterval: time.Minute,
			PollInterval:       5 * time.Second,
		},
		Strategy: StrategyParams{
			CanonicalPair:      domain.Pair{From: "USDC", To: "WETH"},
			TrendBuyThreshold:  decimal.RequireFromString("0.02"),
			TrendSellThreshold: decimal.RequireFromString("-0.01"),
			MeanRevLowBand:     decimal.RequireFromString("0.98"),
			MeanRevHighBand:    decimal.RequireFromString("1.02"),
			MaxSellAmount:      decimal.RequireFromString("0.1"),
		},
	}
}

func applyYaml(path string, conf *Config) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return err
	}

	if tmp.Sandbox != nil {
		conf.Sandbox = *tmp.Sandbox
	}
	conf.Live = tmp.Live
	if tmp.LogFile != "" {
		conf.LogFile = tmp.LogFile
	}
	if tmp.StateDir != "" {
		conf.StateDir = tmp.StateDir
	}
	durations := []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{tmp.TradeIntervalStr, "trade_interval", &conf.Trading.TradeInterval},
		{tmp.AlertCheckIntervalStr, "alert_check_interval", &conf.Trading.AlertCheckInterval},
		{tmp.PollIntervalStr, "poll_interval", &conf.Trading.PollInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("incorrect '%s' param in yaml config (must be a duration like 30s or 5m): %w", d.name, err)
		}
		*d.dst = v
	}

	decimals := []struct {
		raw  string
		name string
		dst  *decimal.Decimal
	}{
		{tmp.DefaultTradeAmountStr, "default_trade_amount", &conf.Trading.DefaultTradeAmount},
		{tmp.MinTradeAmountStr, "min_trade_amount", &conf.Trading.MinTradeAmount},
		{tmp.MaxTradeAmountStr, "max_trade_amount", &conf.Trading.MaxTradeAmount},
		{tmp.RiskFactorStr, "risk_factor", &conf.Trading.RiskFactor},
		{tmp.StopLossStr, "stop_loss", &conf.Trading.StopLoss},
		{tmp.TakeProfitStr, "take_profit", &conf.Trading.TakeProfit},
	}
	for _, d := range decimals {
		if d.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return fmt.Errorf("incorrect '%s' param in yaml config (must be a decimal): %w", d.name, err)
		}
		*d.dst = v
	}

	if tmp.CanonicalPair != "" {
		pair, err := domain.ParsePair(tmp.CanonicalPair)
		if err != nil {
			return fmt.Errorf("incorrect 'canonical_pair' param in yaml config: %w", err)
		}
		conf.Strategy.CanonicalPair = pair
	}

	if len(tmp.Tokens) > 0 {
		symbols := make([]string, 0, len(tmp.Tokens))
		for symbol := range tmp.Tokens {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		conf.Tokens = conf.Tokens[:0]
		for _, symbol := range symbols {
			conf.Tokens = append(conf.Tokens, domain.Token{Symbol: symbol, Address: tmp.Tokens[symbol]})
		}
	}

	if conf.Trading.MinTradeAmount.GreaterThan(conf.Trading.MaxTradeAmount) {
		return fmt.Errorf("min_trade_amount %s exceeds max_trade_amount %s",
			conf.Trading.MinTradeAmount.String(), conf.Trading.MaxTradeAmount.String())
	}

	return nil
}
