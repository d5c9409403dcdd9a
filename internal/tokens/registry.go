// Package tokens holds the static registry of supported tokens.
package tokens

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

// Registry maps token symbols to chain addresses. Read-only after construction.
type Registry struct {
	tokens    map[string]domain.Token
	bySymbol  []string
	byAddress map[string]string
}

// NewRegistry builds a registry from the given token table, validating
// every chain address. Duplicate symbols are rejected.
func NewRegistry(table []domain.Token) (*Registry, error) {
	r := &Registry{
		tokens:    make(map[string]domain.Token, len(table)),
		bySymbol:  make([]string, 0, len(table)),
		byAddress: make(map[string]string, len(table)),
	}
	for _, t := range table {
		symbol := strings.ToUpper(strings.TrimSpace(t.Symbol))
		if symbol == "" {
			return nil, errors.New("token with empty symbol")
		}
		if !common.IsHexAddress(t.Address) {
			return nil, errors.Errorf("invalid chain address %q for token %s", t.Address, symbol)
		}
		if _, ok := r.tokens[symbol]; ok {
			return nil, errors.Errorf("duplicate token symbol %s", symbol)
		}
		address := common.HexToAddress(t.Address).Hex()
		r.tokens[symbol] = domain.Token{Symbol: symbol, Address: address}
		r.bySymbol = append(r.bySymbol, symbol)
		r.byAddress[address] = symbol
	}
	return r, nil
}

// Resolve returns the token for the given symbol.
func (r *Registry) Resolve(symbol string) (domain.Token, error) {
	t, ok := r.tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return domain.Token{}, errors.Wrap(domain.ErrUnknownToken, symbol)
	}
	return t, nil
}

// SymbolForAddress reverse lookup from chain address to symbol.
func (r *Registry) SymbolForAddress(address string) (string, bool) {
	if !common.IsHexAddress(address) {
		return "", false
	}
	symbol, ok := r.byAddress[common.HexToAddress(address).Hex()]
	return symbol, ok
}

// Symbols returns known symbols in registration order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.bySymbol))
	copy(out, r.bySymbol)
	return out
}
