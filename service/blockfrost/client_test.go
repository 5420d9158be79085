package blockfrost

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client against the given server with the throttle
// and retry backoff neutralized so tests run instantly.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noSleep := func(context.Context, time.Duration) error { return nil }
	limiter := NewRateLimiterWithClock(0, time.Now, noSleep)
	c := NewClient(server.URL, "test-project-id", limiter, nil, logger)
	c.sleep = noSleep
	return c
}

func TestClient_SendsCredentialHeader(t *testing.T) {
	var gotProjectID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProjectID = r.Header.Get("project_id")
		w.Write([]byte(`{"hash":"abc","block_height":1}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Transaction(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "test-project-id", gotProjectID)
}

func TestClient_DecodesTypedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/addresses/addr1/transactions", r.URL.Path)
		w.Write([]byte(`[
			{"tx_hash":"aaa","tx_index":0,"block_height":100,"block_time":1700000000},
			{"tx_hash":"bbb","tx_index":1,"block_height":99,"block_time":1699999000}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	refs, err := client.AddressTransactions(context.Background(), "addr1", 1)

	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "aaa", refs[0].TxHash)
	assert.Equal(t, int64(100), refs[0].BlockHeight)
	assert.Equal(t, int64(1699999000), refs[1].BlockTime)
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Transaction(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRateLimited(err))
}

func TestClient_RetriesRateLimitWithinBudget(t *testing.T) {
	// 429 on attempts 1 and 2, then 200: the call must succeed.
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"hash":"abc","block_height":42}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	txn, err := client.Transaction(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "abc", txn.Hash)
	assert.Equal(t, int64(42), txn.BlockHeight)
}

func TestClient_RateLimitBudgetExhausted(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Transaction(context.Background(), "abc")

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 4, attempts) // 1 initial + 3 retries

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 4, rl.Attempts)
}

func TestClient_RetryBackoffDoubles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	var backoffs []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		backoffs = append(backoffs, d)
		return nil
	}

	_, err := client.Transaction(context.Background(), "abc")

	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, backoffs)
}

func TestClient_UpstreamErrorCarriesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"backend unavailable"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Transaction(context.Background(), "abc")

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "backend unavailable", apiErr.Message)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsRateLimited(err))
}

func TestClient_PaginationParameters(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.AccountAddresses(context.Background(), "stake1xyz", 7)

	require.NoError(t, err)
	assert.Equal(t, "count=100&page=7", gotQuery)
}
