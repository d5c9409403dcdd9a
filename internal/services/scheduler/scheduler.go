// Package scheduler runs the unattended auto-trading loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/services/strategy"
	"github.com/vadiminshakov/recallbot/internal/session"
	"github.com/vadiminshakov/recallbot/internal/settings"
	"go.uber.org/zap"
)

const faultBackoff = 10 * time.Second

var (
	// ErrAlreadyRunning the loop is already live; only one runs per process.
	ErrAlreadyRunning = errors.New("auto-trading is already running")
	// ErrNotRunning stop was requested while the loop is stopped.
	ErrNotRunning = errors.New("auto-trading is not running")
	// ErrNoStrategy start was requested before selecting a strategy.
	ErrNoStrategy = errors.New("no strategy selected")
)

// TradeExecutor executes proposed trades.
type TradeExecutor interface {
	Execute(ctx context.Context, from, to string, amount decimal.Decimal, reason string) (domain.TradeRecord, error)
}

// AlertChecker surfaces at most one newly-triggered alert per call.
type AlertChecker interface {
	CheckAlerts(market session.MarketView) string
}

// Scheduler owns the single background auto-trading loop and the
// process-wide active strategy selection.
type Scheduler struct {
	executor TradeExecutor
	market   strategy.MarketView
	balances strategy.BalanceView
	alerts   AlertChecker
	settings *settings.Settings
	logger   *zap.Logger
	notify   func(string)

	strategyMu sync.RWMutex
	strategy   strategy.Evaluator

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped scheduler. notify receives alert notifications and
// may be nil.
func New(executor TradeExecutor, market strategy.MarketView, balances strategy.BalanceView,
	alerts AlertChecker, params *settings.Settings, logger *zap.Logger, notify func(string)) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Scheduler{
		executor: executor,
		market:   market,
		balances: balances,
		alerts:   alerts,
		settings: params,
		logger:   logger,
		notify:   notify,
	}
}

// SetStrategy selects the active strategy for auto-trading.
func (s *Scheduler) SetStrategy(ev strategy.Evaluator) {
	s.strategyMu.Lock()
	defer s.strategyMu.Unlock()
	s.strategy = ev
}

// StrategyName returns the active strategy name, "" when none is selected.
func (s *Scheduler) StrategyName() string {
	s.strategyMu.RLock()
	defer s.strategyMu.RUnlock()
	if s.strategy == nil {
		return ""
	}
	return s.strategy.Name()
}

// Running reports whether the loop is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the background loop. It refuses when no strategy is
// selected and when a loop is already live.
func (s *Scheduler) Start(ctx context.Context) error {
	s.strategyMu.RLock()
	ev := s.strategy
	s.strategyMu.RUnlock()
	if ev == nil {
		return ErrNoStrategy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(runCtx, s.done)

	s.logger.Info("auto-trading started", zap.String("strategy", ev.Name()))
	return nil
}

// Stop cancels the loop and waits until it has actually exited.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("auto-trading stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	poll := s.settings.PollInterval()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	lastTrade := time.Now()
	lastAlertCheck := time.Now()

	for {
		// settings can change at runtime, re-arm the ticker when they do
		if p := s.settings.PollInterval(); p != poll {
			poll = p
			ticker.Reset(poll)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Since(lastTrade) > s.settings.TradeInterval() {
				if s.tradeOnce(ctx) {
					lastTrade = time.Now()
				} else {
					// executor faults pause the loop, they never stop it
					select {
					case <-ctx.Done():
						return
					case <-time.After(faultBackoff):
					}
				}
			}

			if time.Since(lastAlertCheck) > s.settings.AlertCheckInterval() {
				if msg := s.alerts.CheckAlerts(s.market); msg != "" {
					s.logger.Info("alert triggered", zap.String("alert", msg))
					s.notify(msg)
				}
				lastAlertCheck = time.Now()
			}
		}
	}
}

// tradeOnce asks the strategy for a decision and executes it. It reports
// false only when execution failed; a pass with no proposal counts as done.
func (s *Scheduler) tradeOnce(ctx context.Context) bool {
	s.strategyMu.RLock()
	ev := s.strategy
	s.strategyMu.RUnlock()
	if ev == nil {
		return true
	}

	proposal, err := ev.Propose(s.market, s.balances)
	if err != nil {
		s.logger.Error("strategy evaluation failed", zap.String("strategy", ev.Name()), zap.Error(err))
		return false
	}
	if proposal == nil {
		return true
	}

	reason := "auto-trade: " + ev.Name()
	record, err := s.executor.Execute(ctx, proposal.From, proposal.To, proposal.Amount, reason)
	if err != nil {
		s.logger.Error("auto-trade failed",
			zap.String("strategy", ev.Name()),
			zap.String("proposal", proposal.String()),
			zap.Error(err))
		return false
	}

	s.logger.Info("auto-trade executed",
		zap.String("strategy", ev.Name()),
		zap.String("id", record.ID),
		zap.String("from", record.From),
		zap.String("to", record.To),
		zap.String("amount", record.Amount.String()))
	return true
}
