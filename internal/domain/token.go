package domain

// Token supported token with its chain address.
type Token struct {
	// Symbol unique token symbol, e.g. USDC.
	Symbol string
	// Address chain address of the token contract.
	Address string
}
