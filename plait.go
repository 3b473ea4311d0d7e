package plait

import (
	"context"
	"errors"
)

// Common errors.
var (
	// ErrNoRoot is the failure of a Run call given a nil root node.
	ErrNoRoot = errors.New("plait: no root node")

	// ErrNoChain is the failure of an Execute call on a nil chain.
	ErrNoChain = errors.New("plait: no compiled chain")
)

// Transform is one indivisible unit of work: a single input-to-output step.
// Transforms may suspend arbitrarily (timers, I/O); they should honor ctx
// cancellation themselves if early abandonment matters to them.
type Transform func(ctx context.Context, input any) (any, error)

// Strategy wraps the execution of one leaf, given the pending upstream
// result. A strategy fully owns its retry counts, timing, and failure
// translation: it decides when (and how often) to invoke the leaf's
// transform and what the resulting pending value is.
//
// Strategies must return a non-nil promise. They are invoked once per leaf
// per execution and hold no chain state between invocations unless the
// author introduces it deliberately.
type Strategy func(ctx context.Context, pending *Promise, leaf *Leaf) *Promise

// element is a member of a compiled chain: a leaf to run or a scope marker
// bracketing a strategy's extent. During compilation the work queue also
// holds not-yet-expanded Sequence and Parallel nodes as elements.
type element interface {
	element()
}

// Node is one position in a task tree: a Leaf, a Sequence, or a Parallel.
// Nodes are immutable once constructed and may be shared across multiple
// compilations. The compiler tracks the root by identity, so the same node
// value must not occupy two different positions within one tree.
type Node interface {
	element

	// Name identifies the node in failures and, for Parallel children,
	// keys the merged result map.
	Name() string
}

// Leaf is an indivisible unit of work carrying one transform.
type Leaf struct {
	name      string
	transform Transform
}

// NewLeaf creates a leaf node. A nil transform passes the input through
// unchanged.
func NewLeaf(name string, transform Transform) *Leaf {
	if transform == nil {
		transform = func(ctx context.Context, input any) (any, error) {
			return input, nil
		}
	}
	return &Leaf{name: name, transform: transform}
}

// Name returns the leaf's identifier.
func (l *Leaf) Name() string { return l.name }

// Transform applies the leaf's unit of work to input.
func (l *Leaf) Transform(ctx context.Context, input any) (any, error) {
	return l.transform(ctx, input)
}

func (l *Leaf) element() {}

// groupOptions holds configuration shared by Sequence and Parallel nodes.
type groupOptions struct {
	strategy Strategy
}

// GroupOption configures a Sequence or Parallel node.
type GroupOption func(*groupOptions)

// WithStrategy attaches a strategy to a Sequence or Parallel node. The
// strategy applies to exactly the leaves derived from that node's subtree;
// nested strategies override it for their own subtrees rather than
// composing with it.
func WithStrategy(s Strategy) GroupOption {
	return func(o *groupOptions) {
		o.strategy = s
	}
}

// Sequence is an ordered composition: each child's output becomes the next
// child's input.
type Sequence struct {
	name     string
	children []Node
	strategy Strategy
}

// NewSequence creates a sequence node from children in execution order.
func NewSequence(name string, children []Node, opts ...GroupOption) *Sequence {
	var o groupOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Sequence{
		name:     name,
		children: append([]Node(nil), children...),
		strategy: o.strategy,
	}
}

// Name returns the sequence's identifier.
func (s *Sequence) Name() string { return s.name }

// Children returns the sequence's children in execution order.
func (s *Sequence) Children() []Node { return s.children }

// Strategy returns the attached strategy, or nil.
func (s *Sequence) Strategy() Strategy { return s.strategy }

func (s *Sequence) element() {}

// Parallel is a concurrent composition: every child receives the same
// input, children run concurrently, and their results are merged into a
// map keyed by child name in declaration order.
type Parallel struct {
	name     string
	children []Node
	strategy Strategy
}

// NewParallel creates a parallel node from children. Child names key the
// merged result map, so they should be unique within one parallel group.
func NewParallel(name string, children []Node, opts ...GroupOption) *Parallel {
	var o groupOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Parallel{
		name:     name,
		children: append([]Node(nil), children...),
		strategy: o.strategy,
	}
}

// Name returns the parallel group's identifier.
func (p *Parallel) Name() string { return p.name }

// Children returns the parallel group's children in declaration order.
func (p *Parallel) Children() []Node { return p.children }

// Strategy returns the attached strategy, or nil.
func (p *Parallel) Strategy() Strategy { return p.strategy }

func (p *Parallel) element() {}

// Logger provides structured logging for opt-in observer strategies. The
// core itself never logs.
type Logger interface {
	Debug(ctx context.Context, msg string, keysAndValues ...any)
	Info(ctx context.Context, msg string, keysAndValues ...any)
	Error(ctx context.Context, msg string, keysAndValues ...any)
}
