package plait

import (
	"context"
	"fmt"
)

// Execute replays a compiled chain against one input and returns the
// program's pending result. Each call allocates a fresh strategy stack
// and pending handle, so a chain may be executed concurrently for
// independent inputs.
//
// Elements are visited strictly in chain order: a start marker pushes its
// strategy, an end marker pops, and a leaf is dispatched through the
// current top of stack, or chained directly through its transform when
// the stack is empty. Only the innermost strategy is consulted for a
// leaf; outer strategies never additionally wrap it.
func Execute(ctx context.Context, chain *Chain, input any) *Promise {
	if chain == nil {
		return Rejected(ErrNoChain)
	}

	pending := Resolved(input)
	var stack []Strategy

	for _, el := range chain.elements {
		switch e := el.(type) {
		case *scopeMarker:
			if e.kind == scopeStart {
				stack = append(stack, e.strategy)
				continue
			}
			if len(stack) == 0 {
				panic("plait: internal: scope stack underflow")
			}
			stack = stack[:len(stack)-1]

		case *Leaf:
			if len(stack) > 0 {
				pending = stack[len(stack)-1](ctx, pending, e)
			} else {
				pending = Then(ctx, pending, e.Transform)
			}

		default:
			panic(fmt.Sprintf("plait: internal: unexpanded %T in compiled chain", el))
		}
	}

	return pending
}

// Run compiles root and executes it once against input. Callers running
// the same tree repeatedly should Compile once and Execute per input.
func Run(ctx context.Context, root Node, input any) *Promise {
	if root == nil {
		return Rejected(ErrNoRoot)
	}
	return Execute(ctx, Compile(root), input)
}
