package blockfrost

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the indexer responds with 404.
// For list endpoints this means "no more data"; for point lookups it means
// the resource does not exist. Callers match it with errors.Is.
var ErrNotFound = errors.New("blockfrost: not found")

// RateLimitedError is returned when a request kept hitting 429 responses
// until the retry budget was exhausted. It is not retried further upstream.
type RateLimitedError struct {
	Path     string
	Attempts int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("blockfrost: rate limited on %s after %d attempts", e.Path, e.Attempts)
}

// APIError is returned for any other non-2xx response.
type APIError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("blockfrost: %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("blockfrost: %s returned status %d", e.Path, e.StatusCode)
}

// IsNotFound reports whether err is the indexer's 404 condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited reports whether err is an exhausted-retry 429 condition.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
