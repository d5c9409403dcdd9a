// Package ledger tracks simulated token balances.
package ledger

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"go.uber.org/zap"
)

// Ledger in-memory balance book. Balances never go negative: an overdraft
// fails the whole transfer and nothing is applied.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	logger   *zap.Logger
}

// New creates a ledger seeded with the given balances.
func New(initial map[string]decimal.Decimal, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	balances := make(map[string]decimal.Decimal, len(initial))
	for symbol, amount := range initial {
		balances[symbol] = amount
	}
	return &Ledger{balances: balances, logger: logger}
}

// BalanceOf returns the current balance for the symbol, zero when absent.
func (l *Ledger) BalanceOf(symbol string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[symbol]
}

// Snapshot returns a copy of all balances.
func (l *Ledger) Snapshot() map[string]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(l.balances))
	for symbol, amount := range l.balances {
		out[symbol] = amount
	}
	return out
}

// Transfer debits `debit` of `from` and credits `credit` of `to` as one
// indivisible step. The destination entry is created when absent.
func (l *Ledger) Transfer(from, to string, debit, credit decimal.Decimal) error {
	if debit.LessThanOrEqual(decimal.Zero) || credit.LessThan(decimal.Zero) {
		return errors.Errorf("transfer amounts must be positive, debit=%s credit=%s", debit.String(), credit.String())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	have := l.balances[from]
	if have.LessThan(debit) {
		return errors.Wrapf(domain.ErrInsufficientBalance, "%s: have %s need %s", from, have.String(), debit.String())
	}

	l.balances[from] = have.Sub(debit)
	l.balances[to] = l.balances[to].Add(credit)

	l.logger.Debug("transfer applied",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("debit", debit.String()),
		zap.String("credit", credit.String()))
	return nil
}

// Restore replaces all balances, used when reloading persisted state.
func (l *Ledger) Restore(balances map[string]decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[string]decimal.Decimal, len(balances))
	for symbol, amount := range balances {
		l.balances[symbol] = amount
	}
}
