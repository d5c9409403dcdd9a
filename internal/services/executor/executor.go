// Package executor validates and executes trades against the ledger.
package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/clients"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/ledger"
	"github.com/vadiminshakov/recallbot/internal/market"
	"github.com/vadiminshakov/recallbot/internal/settings"
	"github.com/vadiminshakov/recallbot/internal/tokens"
	"go.uber.org/zap"
)

// APIClient posts trades to the external execution API.
type APIClient interface {
	ExecuteTrade(ctx context.Context, fromAddress, toAddress string, amount decimal.Decimal, reason string) (*clients.TradeResponse, error)
}

// Journal appends executed trades to durable storage.
type Journal interface {
	Append(record domain.TradeRecord) error
}

// Executor validates trade requests, computes the received amount, applies
// the ledger mutation atomically and appends to the trade history.
type Executor struct {
	registry *tokens.Registry
	ledger   *ledger.Ledger
	board    *market.Board
	settings *settings.Settings
	client   APIClient // nil in simulated mode
	journal  Journal   // optional
	logger   *zap.Logger
	onTrade  func(domain.TradeRecord)

	mu      sync.RWMutex
	history []domain.TradeRecord
	seq     int
}

// Option configures the Executor.
type Option func(*Executor)

// WithAPIClient switches the executor into live mode: trades are posted to
// the external API first and nothing is mutated when the call fails.
func WithAPIClient(client APIClient) Option {
	return func(e *Executor) { e.client = client }
}

// WithJournal attaches a durable trade journal.
func WithJournal(journal Journal) Option {
	return func(e *Executor) { e.journal = journal }
}

// WithOnTrade registers a hook invoked after every executed trade.
func WithOnTrade(fn func(domain.TradeRecord)) Option {
	return func(e *Executor) { e.onTrade = fn }
}

// New creates an Executor.
func New(registry *tokens.Registry, bals *ledger.Ledger, board *market.Board, params *settings.Settings, logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		registry: registry,
		ledger:   bals,
		board:    board,
		settings: params,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one trade. All failure modes are typed: domain.ErrUnknownToken,
// domain.ErrSameToken, domain.ErrAmountOutOfRange, domain.ErrInsufficientBalance,
// *domain.APIError or a wrapped transport error.
func (e *Executor) Execute(ctx context.Context, from, to string, amount decimal.Decimal, reason string) (domain.TradeRecord, error) {
	fromToken, err := e.registry.Resolve(from)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	toToken, err := e.registry.Resolve(to)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	if fromToken.Symbol == toToken.Symbol {
		return domain.TradeRecord{}, domain.ErrSameToken
	}

	minAmount, maxAmount := e.settings.TradeLimits()
	if amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
		return domain.TradeRecord{}, errors.Wrapf(domain.ErrAmountOutOfRange,
			"%s not in [%s, %s]", amount.String(), minAmount.String(), maxAmount.String())
	}

	if have := e.ledger.BalanceOf(fromToken.Symbol); have.LessThan(amount) {
		return domain.TradeRecord{}, errors.Wrapf(domain.ErrInsufficientBalance,
			"%s: have %s need %s", fromToken.Symbol, have.String(), amount.String())
	}

	pair := domain.Pair{From: fromToken.Symbol, To: toToken.Symbol}
	price := e.board.Rate(pair)
	received := amount.Mul(price)

	id := e.nextID()
	if e.client != nil {
		resp, err := e.client.ExecuteTrade(ctx, fromToken.Address, toToken.Address, amount, reason)
		if err != nil {
			return domain.TradeRecord{}, err
		}
		if resp.ID != "" {
			id = resp.ID
		}
	}

	if err := e.ledger.Transfer(fromToken.Symbol, toToken.Symbol, amount, received); err != nil {
		return domain.TradeRecord{}, err
	}

	record := domain.TradeRecord{
		ID:        id,
		From:      fromToken.Symbol,
		To:        toToken.Symbol,
		Amount:    amount,
		Received:  received,
		Price:     price,
		Timestamp: time.Now(),
		Reason:    reason,
		Status:    domain.TradeStatusExecuted,
	}
	e.appendHistory(record)

	if e.journal != nil {
		if err := e.journal.Append(record); err != nil {
			e.logger.Warn("failed to journal trade", zap.String("id", record.ID), zap.Error(err))
		}
	}

	e.logger.Info("trade executed",
		zap.String("id", record.ID),
		zap.String("from", record.From),
		zap.String("to", record.To),
		zap.String("amount", amount.String()),
		zap.String("price", price.String()))

	if e.onTrade != nil {
		e.onTrade(record)
	}
	return record, nil
}

func (e *Executor) nextID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	salt := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("TRADE-%d-%s", e.seq, salt)
}

func (e *Executor) appendHistory(record domain.TradeRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, record)
}

// History returns the most recent `limit` records in chronological order,
// all of them when limit <= 0.
func (e *Executor) History(limit int) []domain.TradeRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	start := 0
	if limit > 0 && len(e.history) > limit {
		start = len(e.history) - limit
	}
	out := make([]domain.TradeRecord, len(e.history)-start)
	copy(out, e.history[start:])
	return out
}

// LastTrade returns the most recent trade, false when none happened yet.
func (e *Executor) LastTrade() (domain.TradeRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.history) == 0 {
		return domain.TradeRecord{}, false
	}
	return e.history[len(e.history)-1], true
}

// TradeCount returns the number of executed trades.
func (e *Executor) TradeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.history)
}

// RestoreHistory replaces the in-memory history with persisted records and
// advances the id counter past them.
func (e *Executor) RestoreHistory(records []domain.TradeRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = make([]domain.TradeRecord, len(records))
	copy(e.history, records)
	e.seq = len(records)
}
