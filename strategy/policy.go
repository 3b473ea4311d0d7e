package strategy

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/agentstation/plait"
)

// Policy defines delayed-retry behavior for WithPolicy.
type Policy struct {
	// MaxAttempts is the total number of invocations (minimum 1).
	MaxAttempts int
	// InitialDelay is the delay before the first re-attempt.
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier is the factor by which the delay grows per attempt.
	Multiplier float64
	// Jitter randomizes each delay within [delay/2, delay) to avoid
	// thundering herds.
	Jitter bool
}

// DefaultPolicy returns a sensible default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Exponential creates an exponential backoff policy.
func Exponential(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Linear creates a fixed-delay policy.
func Linear(maxAttempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: delay,
		MaxDelay:     delay,
		Multiplier:   1.0,
	}
}

// Do invokes fn under the policy, sleeping between attempts.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.InitialDelay

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := delay
			if p.Jitter && wait > 0 {
				wait = wait/2 + time.Duration(rand.Int63n(int64(wait/2)+1))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}

			delay = time.Duration(float64(delay) * p.Multiplier)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// WithPolicy adapts a retry policy into a strategy: the leaf's transform
// is re-invoked under the policy's schedule until it succeeds or the
// attempts are exhausted.
func WithPolicy(p Policy) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			var out any
			err := p.Do(ctx, func() error {
				var attemptErr error
				out, attemptErr = leaf.Transform(ctx, input)
				return attemptErr
			})
			if err != nil {
				return nil, fmt.Errorf("leaf %q: %w", leaf.Name(), err)
			}
			return out, nil
		})
	}
}
