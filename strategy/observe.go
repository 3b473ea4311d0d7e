package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/plait"
)

// Logging observes leaf execution through a logger. Inputs and outputs
// are logged by type only; node names are the identifying information.
func Logging(logger plait.Logger) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			logger.Debug(ctx, "leaf starting", "leaf", leaf.Name(), "input_type", fmt.Sprintf("%T", input))
			start := time.Now()

			out, err := leaf.Transform(ctx, input)

			if err != nil {
				logger.Error(ctx, "leaf failed",
					"leaf", leaf.Name(),
					"duration", time.Since(start),
					"error", err)
			} else {
				logger.Info(ctx, "leaf completed",
					"leaf", leaf.Name(),
					"duration", time.Since(start),
					"result_type", fmt.Sprintf("%T", out))
			}

			return out, err
		})
	}
}

// Timing reports each leaf's execution duration to sink. The sink is
// called after the transform settles, whether it succeeded or failed.
func Timing(sink func(leaf string, d time.Duration)) plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			start := time.Now()
			out, err := leaf.Transform(ctx, input)
			sink(leaf.Name(), time.Since(start))
			return out, err
		})
	}
}
