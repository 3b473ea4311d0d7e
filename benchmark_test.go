package plait_test

import (
	"context"
	"testing"

	"github.com/agentstation/plait"
)

func buildWideTree(width int) plait.Node {
	leaves := make([]plait.Node, width)
	for i := range leaves {
		leaves[i] = plait.NewLeaf("step", func(ctx context.Context, in any) (any, error) {
			return in.(int) + 1, nil
		})
	}
	return plait.NewSequence("bench", leaves)
}

func BenchmarkCompile(b *testing.B) {
	root := buildWideTree(50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plait.Compile(root)
	}
}

func BenchmarkExecute(b *testing.B) {
	chain := plait.Compile(buildWideTree(10))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := plait.Execute(ctx, chain, 0).Get(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExecuteParallel(b *testing.B) {
	children := make([]plait.Node, 8)
	for i := range children {
		name := string(rune('a' + i))
		children[i] = plait.NewLeaf(name, func(ctx context.Context, in any) (any, error) {
			return in, nil
		})
	}
	chain := plait.Compile(plait.NewParallel("fanout", children))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := plait.Execute(ctx, chain, i).Get(); err != nil {
			b.Fatal(err)
		}
	}
}
