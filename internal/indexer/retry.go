package indexer

import (
	"errors"
	"math/rand/v2"
	"time"

	"sectiondocs/internal/llm"
)

const maxRetries = 3

// isRetryable reports whether an embedding failure is worth retrying.
func isRetryable(err error) bool {
	var retryErr *llm.RetryableError
	return errors.As(err, &retryErr)
}

// backoff returns the wait before attempt n+1, doubling from one second
// up to 30s with up to 50% jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	return base + time.Duration(rand.Int64N(int64(base)/2))
}
