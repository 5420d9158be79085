package blockfrost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dmaloney/cardano-export/service/metrics"
)

const (
	// maxRetries is the number of additional attempts after a 429 response.
	maxRetries = 3
	// retryBaseDelay is the first backoff delay; it doubles on each retry.
	retryBaseDelay = 100 * time.Millisecond
)

// Client is a low-level client for a Blockfrost-compatible Cardano indexing
// API. Every request passes through one shared RateLimiter, and 429 responses
// are retried with exponential backoff before surfacing as RateLimitedError.
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// sleep is the backoff sleep, injectable for deterministic retry tests.
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a new indexer client. The projectID is sent as the static
// credential header on every request. If m is nil, no metrics are recorded.
func NewClient(baseURL, projectID string, limiter *RateLimiter, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		projectID:  projectID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
		logger:     logger,
		metrics:    m,
		sleep:      sleepContext,
	}
}

// get fetches path and decodes the JSON body into T. It applies the shared
// throttle before each attempt and implements the 404/429 error taxonomy.
// The method parameter is only a metrics label.
func get[T any](ctx context.Context, c *Client, method, path string) (T, error) {
	var zero T

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		start := time.Now()
		body, status, err := c.do(ctx, path)
		if c.metrics != nil {
			outcome := "success"
			if err != nil || status >= 300 {
				outcome = "error"
			}
			c.metrics.RecordIndexerCall(method, outcome, time.Since(start).Seconds())
		}
		if err != nil {
			return zero, fmt.Errorf("request %s failed: %w", path, err)
		}

		switch {
		case status == http.StatusNotFound:
			return zero, fmt.Errorf("%s: %w", path, ErrNotFound)

		case status == http.StatusTooManyRequests:
			if attempt == maxRetries {
				if c.metrics != nil {
					c.metrics.RecordRateLimitExhausted()
				}
				return zero, &RateLimitedError{Path: path, Attempts: attempt + 1}
			}
			backoff := retryBaseDelay << uint(attempt)
			c.logger.WarnContext(ctx, "rate limited, backing off",
				"path", path,
				"attempt", attempt+1,
				"backoff", backoff,
			)
			if c.metrics != nil {
				c.metrics.RecordRateLimitHit()
			}
			if err := c.sleep(ctx, backoff); err != nil {
				return zero, err
			}
			continue

		case status < 200 || status >= 300:
			return zero, &APIError{Path: path, StatusCode: status, Message: apiMessage(body)}
		}

		var out T
		if err := json.Unmarshal(body, &out); err != nil {
			return zero, fmt.Errorf("failed to decode %s response: %w", path, err)
		}
		return out, nil
	}

	// Unreachable: the loop always returns.
	return zero, &RateLimitedError{Path: path, Attempts: maxRetries + 1}
}

// do performs a single HTTP request and returns the body and status code.
func (c *Client) do(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// apiMessage extracts the indexer's error message from a non-2xx body.
func apiMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	return errResp.Message
}

// AddressTransactions returns one page of transaction references for an
// address, newest first. Pages are numbered from 1.
func (c *Client) AddressTransactions(ctx context.Context, address string, page int) ([]AddressTransaction, error) {
	path := fmt.Sprintf("/addresses/%s/transactions?count=%d&page=%d&order=desc",
		url.PathEscape(address), PageSize, page)
	return get[[]AddressTransaction](ctx, c, "AddressTransactions", path)
}

// Transaction returns the detail record for one transaction hash.
func (c *Client) Transaction(ctx context.Context, hash string) (*Transaction, error) {
	return get[*Transaction](ctx, c, "Transaction", "/txs/"+url.PathEscape(hash))
}

// TransactionUTXOs returns the input and output UTXO sets of a transaction.
func (c *Client) TransactionUTXOs(ctx context.Context, hash string) (*TransactionUTXOs, error) {
	return get[*TransactionUTXOs](ctx, c, "TransactionUTXOs", "/txs/"+url.PathEscape(hash)+"/utxos")
}

// AccountAddresses returns one page of payment addresses controlled by a
// stake key. Pages are numbered from 1.
func (c *Client) AccountAddresses(ctx context.Context, stakeAddress string, page int) ([]AccountAddress, error) {
	path := fmt.Sprintf("/accounts/%s/addresses?count=%d&page=%d",
		url.PathEscape(stakeAddress), PageSize, page)
	return get[[]AccountAddress](ctx, c, "AccountAddresses", path)
}

// AccountRewards returns one page of staking reward events for a stake key.
// Pages are numbered from 1.
func (c *Client) AccountRewards(ctx context.Context, stakeAddress string, page int) ([]AccountReward, error) {
	path := fmt.Sprintf("/accounts/%s/rewards?count=%d&page=%d",
		url.PathEscape(stakeAddress), PageSize, page)
	return get[[]AccountReward](ctx, c, "AccountRewards", path)
}
