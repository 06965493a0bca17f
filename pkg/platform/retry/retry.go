// Package retry re-runs read-only store calls that failed with a transient
// storage error. Writes and transactions are never retried here.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"malpot/pkg/platform/sentinel"
)

// Policy bounds the retries for one read.
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy retries three times starting at 25ms.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, InitialInterval: 25 * time.Millisecond, MaxInterval: 500 * time.Millisecond}
}

// WithMaxRetries returns a copy of p with the retry count replaced.
func (p Policy) WithMaxRetries(n uint64) Policy {
	p.MaxRetries = n
	return p
}

// Read runs fn, retrying with exponential backoff while it returns an error
// wrapping sentinel.ErrUnavailable. Other errors return immediately.
func Read[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	op := func() error {
		v, err := fn(ctx)
		if err != nil {
			if errors.Is(err, sentinel.ErrUnavailable) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = v
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxRetries), ctx))
	return result, err
}
