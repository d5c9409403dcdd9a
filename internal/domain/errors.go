package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors shared across services. Callers match them with errors.Is
// so that every failure mode stays distinguishable at the dispatch boundary.
var (
	// ErrUnknownToken symbol is not present in the token registry.
	ErrUnknownToken = errors.New("unknown token")
	// ErrInsufficientBalance requested amount exceeds the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAmountOutOfRange amount is outside the configured trade window.
	ErrAmountOutOfRange = errors.New("trade amount out of range")
	// ErrSameToken source and destination tokens are identical.
	ErrSameToken = errors.New("source and destination tokens must differ")
)

// APIError non-200 response from the trade execution API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Body)
}
