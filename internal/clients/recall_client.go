// Package clients contains clients for external services.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

const defaultTimeout = 30 * time.Second

// TradeRequest payload for the trade execution endpoint. Token fields carry
// chain addresses, the amount is serialized as a string.
type TradeRequest struct {
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

// TradeResponse subset of the execution response the bot cares about.
type TradeResponse struct {
	ID string `json:"id"`
}

// RecallClient talks to the Recall competitions trade API. Every call is a
// single attempt with a bounded timeout; failures are surfaced to the
// caller, never retried.
type RecallClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRecallClient creates a client for the given environment.
func NewRecallClient(baseURL, apiKey string) *RecallClient {
	return &RecallClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// ExecuteTrade posts a trade to the execution endpoint. Any non-200 status
// is returned as *domain.APIError.
func (c *RecallClient) ExecuteTrade(ctx context.Context, fromAddress, toAddress string, amount decimal.Decimal, reason string) (*TradeResponse, error) {
	payload := TradeRequest{
		FromToken: fromAddress,
		ToToken:   toAddress,
		Amount:    amount.String(),
		Reason:    reason,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal trade request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/trade/execute", bytes.NewReader(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "trade request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var tradeResp TradeResponse
	if err := json.Unmarshal(body, &tradeResp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal trade response")
	}
	return &tradeResp, nil
}

// Health probes the health endpoint. A nil error means the API answered 200.
func (c *RecallClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "health request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &domain.APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}
