package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert user-registered price alert. Triggered alerts stay registered
// until the user removes them.
type Alert struct {
	ID          string
	Pair        Pair
	TargetPrice decimal.Decimal
	Created     time.Time
	Triggered   bool
}
