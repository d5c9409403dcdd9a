// Package domain defines core data structures used throughout the trading chatbot.
package domain

import (
	"fmt"
	"strings"
)

// Pair token pair denoting the price of the first token expressed in the second.
type Pair struct {
	// From base token symbol.
	From string
	// To quote token symbol.
	To string
}

// String returns the string representation, e.g. USDC_WETH.
func (p *Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Inverse returns the pair with base and quote swapped.
func (p *Pair) Inverse() Pair {
	return Pair{From: p.To, To: p.From}
}

// ParsePair parses a SYM_SYM string into a Pair.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair %q, expected format SYM_SYM", s)
	}
	return Pair{From: parts[0], To: parts[1]}, nil
}
