package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeProposal single trade suggested by a strategy evaluator.
type TradeProposal struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// String returns a human-readable string representation.
func (p *TradeProposal) String() string {
	return fmt.Sprintf("%s->%s %s", p.From, p.To, p.Amount.String())
}
