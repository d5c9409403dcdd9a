package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus lifecycle state of a trade record.
type TradeStatus string

const (
	TradeStatusExecuted TradeStatus = "executed"
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusFailed   TradeStatus = "failed"
)

// TradeRecord immutable record of an executed trade.
type TradeRecord struct {
	ID        string          `json:"id"`
	From      string          `json:"from_token"`
	To        string          `json:"to_token"`
	Amount    decimal.Decimal `json:"amount"`
	Received  decimal.Decimal `json:"received"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
	Reason    string          `json:"reason"`
	Status    TradeStatus     `json:"status"`
}

// String returns a human-readable string representation.
func (t *TradeRecord) String() string {
	return fmt.Sprintf("%s %s->%s %s @ %s", t.ID, t.From, t.To, t.Amount.String(), t.Price.String())
}
