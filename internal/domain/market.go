package domain

import "github.com/shopspring/decimal"

// PairStats market data for a single pair over the last 24 hours.
type PairStats struct {
	// Price latest price of the base token in the quote token.
	Price decimal.Decimal
	// Change24h fractional price change, e.g. 0.023 means +2.3%.
	Change24h decimal.Decimal
	// High24h highest price seen in the window.
	High24h decimal.Decimal
	// Low24h lowest price seen in the window.
	Low24h decimal.Decimal
	// Volume traded volume in quote units.
	Volume decimal.Decimal
}

// Mean returns the midpoint of the 24h range.
func (s PairStats) Mean() decimal.Decimal {
	return s.High24h.Add(s.Low24h).Div(decimal.NewFromInt(2))
}
