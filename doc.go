/*
Package plait compiles composable asynchronous task trees into flat,
reusable programs and executes them with scoped cross-cutting strategies.

A program is built as a tree of leaves (single units of work), sequences
(ordered composition, output threads into the next input) and parallels
(concurrent fan-out over the same input, merged into a name-keyed map).
Any sequence or parallel may carry a strategy such as retry or timeout;
a strategy applies to exactly the leaves of that node's subtree, and
nested strategies override outer ones rather than composing.

Key features:
  - Compile once, execute many times against independent inputs
  - Explicit instruction stream with scope markers, replayed by a small
    stack machine
  - Pluggable strategies (see the strategy subpackage)
  - YAML program definitions (see the blueprint subpackage)
  - Functional options for configuration

Basic usage:

	double := plait.NewLeaf("double", func(ctx context.Context, in any) (any, error) {
		return in.(int) * 2, nil
	})
	inc := plait.NewLeaf("inc", func(ctx context.Context, in any) (any, error) {
		return in.(int) + 1, nil
	})

	root := plait.NewSequence("math", []plait.Node{double, inc})
	chain := plait.Compile(root)

	out, err := plait.Execute(ctx, chain, 20).Get() // 41

Strategies:

	fragile := plait.NewSequence("fetch", []plait.Node{fetchLeaf},
		plait.WithStrategy(strategy.Retry(3)))

Batch execution:

	results, err := plait.RunAll(ctx, chain, inputs, plait.WithConcurrency(4))
*/
package plait
