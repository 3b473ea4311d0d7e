// Package script provides sandboxed Lua leaf transforms. A script
// defines a transform(input) function; each execution runs in a fresh
// Lua state with a restricted standard library and json/string helpers.
package script

import (
	"context"
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/agentstation/plait"
)

// Transform compiles source into a leaf transform. The source is checked
// at build time; the transform(input) function it defines is invoked per
// execution in its own sandboxed state.
func Transform(name, source string) (plait.Transform, error) {
	if err := Validate(source); err != nil {
		return nil, fmt.Errorf("script %q: %w", name, err)
	}

	return func(ctx context.Context, input any) (any, error) {
		out, err := run(source, input)
		if err != nil {
			return nil, fmt.Errorf("script %q: %w", name, err)
		}
		return out, nil
	}, nil
}

// Validate checks that source loads and defines a transform function,
// without running the transform.
func Validate(source string) error {
	l := lua.NewState()
	setupSandbox(l)

	if err := lua.LoadString(l, source); err != nil {
		return fmt.Errorf("script validation failed: %w", err)
	}
	l.Pop(1)

	// Execute the chunk to define functions
	if err := lua.DoString(l, source); err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}

	l.Global("transform")
	defined := l.TypeOf(-1) == lua.TypeFunction
	l.Pop(1)
	if !defined {
		return fmt.Errorf("required function 'transform' not found")
	}
	return nil
}

// run executes source against input in a fresh sandboxed state.
func run(source string, input any) (any, error) {
	l := lua.NewState()
	setupSandbox(l)

	pushValue(l, input)
	l.SetGlobal("input")

	if err := lua.DoString(l, source); err != nil {
		return nil, fmt.Errorf("script error: %w", err)
	}

	l.Global("transform")
	if l.TypeOf(-1) != lua.TypeFunction {
		l.Pop(1)
		return nil, fmt.Errorf("required function 'transform' not found")
	}
	pushValue(l, input)
	if err := l.ProtectedCall(1, 1, 0); err != nil {
		return nil, fmt.Errorf("transform error: %w", err)
	}
	result := pullValue(l, -1)
	l.Pop(1)
	return result, nil
}
