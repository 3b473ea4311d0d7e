package plait_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/plait"
)

func TestRunAllPreservesInputOrder(t *testing.T) {
	// Later inputs finish first; results must still land in input order.
	chain := plait.Compile(plait.NewLeaf("slowdown", func(ctx context.Context, in any) (any, error) {
		n := in.(int)
		time.Sleep(time.Duration(10-n) * 5 * time.Millisecond)
		return n * 2, nil
	}))

	inputs := []any{1, 2, 3, 4, 5}
	got, err := plait.RunAll(context.Background(), chain, inputs, plait.WithConcurrency(5))
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	want := []any{2, 4, 6, 8, 10}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RunAll() = %v, want %v", got, want)
	}
}

func TestRunAllSequentialFallback(t *testing.T) {
	chain := plait.Compile(plait.NewLeaf("double", func(ctx context.Context, in any) (any, error) {
		return in.(int) * 2, nil
	}))

	got, err := plait.RunAll(context.Background(), chain, []any{1, 2, 3}, plait.WithConcurrency(0))
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	want := []any{2, 4, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RunAll() = %v, want %v", got, want)
	}
}

func TestRunAllFirstFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	chain := plait.Compile(plait.NewLeaf("picky", func(ctx context.Context, in any) (any, error) {
		if in.(int) == 3 {
			return nil, boom
		}
		return in, nil
	}))

	_, err := plait.RunAll(context.Background(), chain, []any{1, 2, 3, 4}, plait.WithConcurrency(2))
	if !errors.Is(err, boom) {
		t.Fatalf("RunAll() error = %v, want %v", err, boom)
	}
	if !strings.Contains(fmt.Sprint(err), "input 2") {
		t.Errorf("RunAll() error = %v, want input position in message", err)
	}
}

func TestRunAllNilChain(t *testing.T) {
	_, err := plait.RunAll(context.Background(), nil, []any{1})
	if !errors.Is(err, plait.ErrNoChain) {
		t.Errorf("RunAll(nil) error = %v, want ErrNoChain", err)
	}
}
