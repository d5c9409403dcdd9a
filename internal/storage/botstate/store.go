// Package botstate persists chatbot state between sessions.
package botstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

const stateFileName = "recallbot_state.json"

// Store persists balances and trade history so restarts keep the ledger.
type Store struct {
	path string
}

// NewStore creates a state store under the given directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	return &Store{path: filepath.Join(dir, stateFileName)}, nil
}

// State all persisted chatbot data.
type State struct {
	Balance      map[string]string `json:"balance"`
	TradeHistory []StoredTrade     `json:"trade_history"`
	LastUpdated  time.Time         `json:"last_updated"`
}

// StoredTrade serializable form of domain.TradeRecord.
type StoredTrade struct {
	ID        string    `json:"id"`
	From      string    `json:"from_token"`
	To        string    `json:"to_token"`
	Amount    string    `json:"amount"`
	Received  string    `json:"received"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
}

// Load reads persisted state from disk, (nil, nil) when no state exists yet.
func (s *Store) Load() (*State, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read bot state")
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "decode bot state")
	}
	return &state, nil
}

// Save writes state to disk atomically via temp file.
func (s *Store) Save(state State) error {
	if s == nil || s.path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode bot state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write bot state temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist bot state")
	}
	return nil
}

// NewState builds a serializable state from live balances and history.
func NewState(balances map[string]decimal.Decimal, history []domain.TradeRecord) State {
	state := State{
		Balance:      make(map[string]string, len(balances)),
		TradeHistory: make([]StoredTrade, 0, len(history)),
		LastUpdated:  time.Now(),
	}
	for symbol, amount := range balances {
		state.Balance[symbol] = amount.String()
	}
	for _, record := range history {
		state.TradeHistory = append(state.TradeHistory, NewStoredTrade(record))
	}
	return state
}

// NewStoredTrade converts domain.TradeRecord into its stored representation.
func NewStoredTrade(record domain.TradeRecord) StoredTrade {
	return StoredTrade{
		ID:        record.ID,
		From:      record.From,
		To:        record.To,
		Amount:    record.Amount.String(),
		Received:  record.Received.String(),
		Price:     record.Price.String(),
		Timestamp: record.Timestamp,
		Reason:    record.Reason,
		Status:    string(record.Status),
	}
}

// Balances decodes persisted balances back into decimals.
func (st *State) Balances() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(st.Balance))
	for symbol, raw := range st.Balance {
		if raw == "" {
			out[symbol] = decimal.Zero
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s balance", symbol)
		}
		out[symbol] = amount
	}
	return out, nil
}

// Trades decodes persisted trade records, preserving order.
func (st *State) Trades() ([]domain.TradeRecord, error) {
	out := make([]domain.TradeRecord, 0, len(st.TradeHistory))
	for _, t := range st.TradeHistory {
		record, err := t.ToRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// ToRecord reconstructs domain.TradeRecord from stored data.
func (t *StoredTrade) ToRecord() (domain.TradeRecord, error) {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return domain.TradeRecord{}, errors.Wrapf(err, "decode amount of trade %s", t.ID)
	}
	received, err := decimal.NewFromString(t.Received)
	if err != nil {
		return domain.TradeRecord{}, errors.Wrapf(err, "decode received of trade %s", t.ID)
	}
	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return domain.TradeRecord{}, errors.Wrapf(err, "decode price of trade %s", t.ID)
	}
	return domain.TradeRecord{
		ID:        t.ID,
		From:      t.From,
		To:        t.To,
		Amount:    amount,
		Received:  received,
		Price:     price,
		Timestamp: t.Timestamp,
		Reason:    t.Reason,
		Status:    domain.TradeStatus(t.Status),
	}, nil
}
