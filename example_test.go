package plait_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/strategy"
)

func ExampleRun() {
	upper := plait.NewLeaf("upper", func(ctx context.Context, in any) (any, error) {
		return strings.ToUpper(in.(string)), nil
	})
	exclaim := plait.NewLeaf("exclaim", func(ctx context.Context, in any) (any, error) {
		return in.(string) + "!", nil
	})

	root := plait.NewSequence("shout", []plait.Node{upper, exclaim})

	out, _ := plait.Run(context.Background(), root, "hello").Get()
	fmt.Println(out)
	// Output: HELLO!
}

func ExampleCompile() {
	double := plait.NewLeaf("double", func(ctx context.Context, in any) (any, error) {
		return in.(int) * 2, nil
	})
	chain := plait.Compile(plait.NewSequence("math", []plait.Node{double}))

	// One chain, many inputs.
	for _, n := range []int{1, 2, 3} {
		out, _ := plait.Execute(context.Background(), chain, n).Get()
		fmt.Println(out)
	}
	// Output:
	// 2
	// 4
	// 6
}

func ExampleWithStrategy() {
	attempts := 0
	flaky := plait.NewLeaf("flaky", func(ctx context.Context, in any) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("attempt %d failed", attempts)
		}
		return "done", nil
	})

	root := plait.NewSequence("job", []plait.Node{flaky},
		plait.WithStrategy(strategy.Retry(5)))

	out, _ := plait.Run(context.Background(), root, nil).Get()
	fmt.Println(out, attempts)
	// Output: done 3
}
