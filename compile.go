package plait

import (
	"context"
	"fmt"
)

// markerKind distinguishes the two halves of a scope bracket.
type markerKind int

const (
	scopeStart markerKind = iota
	scopeEnd
)

// scopeMarker is a compiled bracket token delimiting where a strategy is
// active. Markers are emitted in matched pairs around the flattened leaves
// of one strategy-bearing node and never escape the chain.
type scopeMarker struct {
	kind     markerKind
	strategy Strategy
}

func (m *scopeMarker) element() {}

// Chain is the flattened, linear, reusable program produced from a task
// tree: an ordered sequence of leaves and scope markers. A chain is
// immutable once compiled and may be executed concurrently for
// independent inputs; each Execute call allocates its own state.
type Chain struct {
	elements []element
}

// Len returns the number of instructions (leaves and markers) in the chain.
func (c *Chain) Len() int { return len(c.elements) }

// Compile flattens a task tree into a chain. It is deterministic, always
// terminates, and does not modify its argument. Compile once, execute any
// number of times.
//
// Expansion is level-order: structural nodes at the queue head are
// replaced by their bracketed children at the tail until only leaves and
// markers remain, then the queue is rotated so the element standing in
// for the original root comes first.
func Compile(root Node) *Chain {
	if root == nil {
		panic("plait: Compile called with nil root")
	}

	queue := []element{root}
	var anchor element = root

	for unexpanded(queue) {
		head := queue[0]
		queue = queue[1:]

		switch n := head.(type) {
		case *Leaf, *scopeMarker:
			// Terminal; defer to the tail so each full pass strictly
			// reduces the count of unexpanded structural nodes.
			queue = append(queue, head)

		case *Sequence:
			queue, anchor = splice(queue, anchor, n, n.strategy, n.children...)

		case *Parallel:
			synthetic := parallelLeaf(n)
			queue, anchor = splice(queue, anchor, n, n.strategy, synthetic)

		default:
			panic(fmt.Sprintf("plait: internal: unknown element %T in work queue", head))
		}
	}

	return &Chain{elements: rotate(queue, anchor)}
}

// unexpanded reports whether the queue still holds structural nodes.
func unexpanded(queue []element) bool {
	for _, el := range queue {
		switch el.(type) {
		case *Leaf, *scopeMarker:
		default:
			return true
		}
	}
	return false
}

// splice appends the expansion of one structural node to the queue tail:
// an optional start marker, the replacement elements, and the matching
// end marker. When the expanded node is the current anchor, the anchor
// moves to whatever now represents its first visible instruction.
func splice(queue []element, anchor, node element, strategy Strategy, replacements ...Node) ([]element, element) {
	var start *scopeMarker
	if strategy != nil {
		start = &scopeMarker{kind: scopeStart, strategy: strategy}
		queue = append(queue, start)
	}
	for _, child := range replacements {
		queue = append(queue, child)
	}
	if strategy != nil {
		queue = append(queue, &scopeMarker{kind: scopeEnd, strategy: strategy})
	}

	if anchor == node {
		switch {
		case start != nil:
			anchor = start
		case len(replacements) > 0:
			anchor = replacements[0]
		}
	}
	return queue, anchor
}

// rotate cycles the queue so the anchor element leads. The anchor is
// matched by identity; not finding it means the compiler broke its own
// bookkeeping, so this faults rather than returning an error.
func rotate(queue []element, anchor element) []element {
	for i, el := range queue {
		if el == anchor {
			rotated := make([]element, 0, len(queue))
			rotated = append(rotated, queue[i:]...)
			rotated = append(rotated, queue[:i]...)
			return rotated
		}
	}
	panic("plait: internal: anchor not found after expansion")
}

// parallelLeaf builds the one synthetic leaf a Parallel node contributes
// to the enclosing chain. Child subtrees are compiled here, once, and the
// compiled chains are reused across executions; each execution of the
// leaf launches every child chain against the shared input, waits for all
// to finish or for the first failure, and merges the successes into a map
// keyed by child name in declaration order.
func parallelLeaf(p *Parallel) *Leaf {
	names := make([]string, len(p.children))
	chains := make([]*Chain, len(p.children))
	for i, child := range p.children {
		names[i] = child.Name()
		chains[i] = Compile(child)
	}

	return NewLeaf(p.name, func(ctx context.Context, input any) (any, error) {
		type settled struct {
			idx int
			out any
			err error
		}

		ch := make(chan settled, len(chains))
		for i, chain := range chains {
			go func(i int, chain *Chain) {
				out, err := Execute(ctx, chain, input).Get()
				ch <- settled{idx: i, out: out, err: err}
			}(i, chain)
		}

		// Fail-fast barrier: the first branch failure settles the leaf
		// and the remaining branches are abandoned, not cancelled.
		results := make([]any, len(chains))
		for range chains {
			s := <-ch
			if s.err != nil {
				return nil, fmt.Errorf("parallel %q: branch %q: %w", p.name, names[s.idx], s.err)
			}
			results[s.idx] = s.out
		}

		if len(names) != len(results) {
			panic("plait: internal: parallel result count does not match branch count")
		}
		merged := make(map[string]any, len(names))
		for i, name := range names {
			merged[name] = results[i]
		}
		return merged, nil
	})
}
