// Package compose provides utilities for building larger plait programs
// from already-compiled ones.
package compose

import (
	"context"
	"fmt"

	"github.com/agentstation/plait"
)

// AsLeaf embeds a compiled chain as a single leaf of a larger tree. The
// leaf executes the chain against its input; the chain's result becomes
// the leaf's output, and strategies attached above the leaf apply to the
// embedded program as one unit.
func AsLeaf(name string, chain *plait.Chain) *plait.Leaf {
	return plait.NewLeaf(name, func(ctx context.Context, input any) (any, error) {
		out, err := plait.Execute(ctx, chain, input).Get()
		if err != nil {
			return nil, fmt.Errorf("embedded program %q: %w", name, err)
		}
		return out, nil
	})
}

// Pipeline threads one input through several compiled chains in order:
// each chain's result becomes the next chain's input. The first failure
// aborts the pipeline wrapped with the failing stage's position.
func Pipeline(ctx context.Context, chains []*plait.Chain, input any) (any, error) {
	current := input
	for i, chain := range chains {
		out, err := plait.Execute(ctx, chain, current).Get()
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d: %w", i, err)
		}
		current = out
	}
	return current, nil
}
