package plait

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 10

// RunOption configures a RunAll call.
type RunOption func(*runOptions)

type runOptions struct {
	concurrency int
}

// WithConcurrency sets the maximum number of inputs executed at once.
// Values below one run the inputs sequentially.
func WithConcurrency(n int) RunOption {
	return func(o *runOptions) {
		o.concurrency = n
	}
}

// RunAll executes one compiled chain against many inputs with a bounded
// worker pool and returns the results in input order. The first failing
// input aborts the batch; its error is returned wrapped with the input's
// position.
func RunAll(ctx context.Context, chain *Chain, inputs []any, opts ...RunOption) ([]any, error) {
	if chain == nil {
		return nil, ErrNoChain
	}

	o := runOptions{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}

	results := make([]any, len(inputs))

	g, ctx := errgroup.WithContext(ctx)

	work := make(chan int, len(inputs))
	for i := range inputs {
		work <- i
	}
	close(work)

	workers := o.concurrency
	if workers > len(inputs) {
		workers = len(inputs)
	}
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for idx := range work {
				out, err := Execute(ctx, chain, inputs[idx]).Get()
				if err != nil {
					return fmt.Errorf("input %d: %w", idx, err)
				}
				results[idx] = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
