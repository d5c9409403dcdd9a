// Package settings owns the runtime-tunable trading parameters.
package settings

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/config"
)

// Settings guards trading parameters shared between the chat path and the
// background scheduler. The settings command mutates them at runtime.
type Settings struct {
	mu     sync.RWMutex
	params config.TradingParams
}

// Entry one named setting with its rendered value.
type Entry struct {
	Name  string
	Value string
}

// New wraps the initial trading parameters.
func New(params config.TradingParams) *Settings {
	return &Settings{params: params}
}

// Params returns a copy of the current parameters.
func (s *Settings) Params() config.TradingParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// TradeLimits returns the allowed [min, max] trade amount window.
func (s *Settings) TradeLimits() (decimal.Decimal, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.MinTradeAmount, s.params.MaxTradeAmount
}

// DefaultTradeAmount returns the default per-trade amount.
func (s *Settings) DefaultTradeAmount() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.DefaultTradeAmount
}

// RiskFactor returns the fraction of a balance permitted per trade.
func (s *Settings) RiskFactor() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.RiskFactor
}

// TradeInterval returns the auto-trading cadence.
func (s *Settings) TradeInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.TradeInterval
}

// AlertCheckInterval returns the alert polling cadence.
func (s *Settings) AlertCheckInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.AlertCheckInterval
}

// PollInterval returns the scheduler wakeup cadence.
func (s *Settings) PollInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.PollInterval
}

// List returns all settings in a stable order.
func (s *Settings) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []Entry{
		{"default_trade_amount", s.params.DefaultTradeAmount.String()},
		{"min_trade_amount", s.params.MinTradeAmount.String()},
		{"max_trade_amount", s.params.MaxTradeAmount.String()},
		{"risk_factor", s.params.RiskFactor.String()},
		{"stop_loss", s.params.StopLoss.String()},
		{"take_profit", s.params.TakeProfit.String()},
		{"trade_interval", s.params.TradeInterval.String()},
		{"alert_check_interval", s.params.AlertCheckInterval.String()},
		{"poll_interval", s.params.PollInterval.String()},
	}
}

// Set updates one named setting from its string form. It returns the
// normalized value for display.
func (s *Settings) Set(name, raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "default_trade_amount", "min_trade_amount", "max_trade_amount",
		"risk_factor", "stop_loss", "take_profit":
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return "", errors.Errorf("invalid value for %s, must be a decimal", name)
		}
		if value.LessThan(decimal.Zero) {
			return "", errors.Errorf("invalid value for %s, must not be negative", name)
		}
		switch name {
		case "default_trade_amount":
			s.params.DefaultTradeAmount = value
		case "min_trade_amount":
			s.params.MinTradeAmount = value
		case "max_trade_amount":
			s.params.MaxTradeAmount = value
		case "risk_factor":
			s.params.RiskFactor = value
		case "stop_loss":
			s.params.StopLoss = value
		case "take_profit":
			s.params.TakeProfit = value
		}
		return value.String(), nil

	case "trade_interval", "alert_check_interval", "poll_interval":
		value, err := time.ParseDuration(raw)
		if err != nil {
			return "", errors.Errorf("invalid value for %s, must be a duration like 30s or 5m", name)
		}
		if value <= 0 {
			return "", errors.Errorf("invalid value for %s, must be positive", name)
		}
		switch name {
		case "trade_interval":
			s.params.TradeInterval = value
		case "alert_check_interval":
			s.params.AlertCheckInterval = value
		case "poll_interval":
			s.params.PollInterval = value
		}
		return value.String(), nil

	default:
		return "", errors.Errorf("unknown setting: %s", name)
	}
}
