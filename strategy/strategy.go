// Package strategy provides reference execution strategies for plait
// programs: retry, timeout, backoff policies, circuit breaking, fallback
// recovery, and observer wrappers.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentstation/plait"
)

// ErrTimeout marks failures raised by Timeout when a leaf's completion
// exceeds its allotted duration.
var ErrTimeout = errors.New("strategy: timeout")

// Retry re-invokes a leaf's transform up to maxAttempts times, returning
// on the first success. If every attempt fails, the final failure
// propagates wrapped with the attempt count. Attempts are immediate; use
// WithPolicy for delays between attempts.
func Retry(maxAttempts int) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			var lastErr error
			for attempt := 0; attempt < maxAttempts; attempt++ {
				out, err := leaf.Transform(ctx, input)
				if err == nil {
					return out, nil
				}
				lastErr = err
			}
			return nil, fmt.Errorf("leaf %q failed after %d attempts: %w", leaf.Name(), maxAttempts, lastErr)
		})
	}
}

// Timeout races a leaf's transform against a timer. If the timer elapses
// first the strategy fails with an ErrTimeout-kind error; the abandoned
// transform keeps running in the background uninstrumented, so leaves
// needing true preemption must watch ctx themselves.
func Timeout(d time.Duration) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			type outcome struct {
				out any
				err error
			}
			ch := make(chan outcome, 1)
			go func() {
				out, err := leaf.Transform(ctx, input)
				ch <- outcome{out: out, err: err}
			}()

			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case o := <-ch:
				return o.out, o.err
			case <-timer.C:
				return nil, fmt.Errorf("leaf %q exceeded %v: %w", leaf.Name(), d, ErrTimeout)
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
	}
}

// Fallback consults handler when a leaf's transform fails. The handler
// receives the leaf's input and the failure and either supplies a
// substitute result or returns its own error, which propagates instead.
func Fallback(handler func(ctx context.Context, input any, err error) (any, error)) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			out, err := leaf.Transform(ctx, input)
			if err == nil {
				return out, nil
			}
			return handler(ctx, input, err)
		})
	}
}

// Compose nests two strategies explicitly: outer wraps the execution that
// inner performs. The executor itself never composes strategies (the
// innermost scope wins), so composition is always an opt-in made at
// strategy construction time.
func Compose(outer, inner plait.Strategy) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		wrapped := plait.NewLeaf(leaf.Name(), func(ctx context.Context, input any) (any, error) {
			return inner(ctx, plait.Resolved(input), leaf).Get()
		})
		return outer(ctx, pending, wrapped)
	}
}
