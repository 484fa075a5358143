package resolver

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/tcfw/didkit/internal/utils/logging"
)

// RetryFetcher wraps a Fetcher with exponential backoff on transient
// failures. The resolution engine itself never retries; callers wanting
// retry semantics wrap their fetcher with this before registration.
type RetryFetcher struct {
	Inner    Fetcher
	Attempts int
	Min, Max time.Duration
}

const (
	defaultRetryAttempts = 3
	defaultRetryMin      = 250 * time.Millisecond
	defaultRetryMax      = 5 * time.Second
)

func (r *RetryFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	bo := &backoff.Backoff{
		Min:    r.Min,
		Max:    r.Max,
		Jitter: true,
	}
	if bo.Min <= 0 {
		bo.Min = defaultRetryMin
	}
	if bo.Max <= 0 {
		bo.Max = defaultRetryMax
	}

	var lastErr error

	for i := 0; i < attempts; i++ {
		body, err := r.Inner.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err

		// only transport-level failures are worth retrying
		if !errors.Is(err, ErrUnreachable) {
			return nil, err
		}

		if i == attempts-1 {
			break
		}

		d := bo.Duration()
		logging.WithError(err).WithField("wait", d).Warn("retrying did document fetch")

		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
