package strategy_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/strategy"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	boom := errors.New("boom")
	leaf := plait.NewLeaf("broken", func(ctx context.Context, in any) (any, error) {
		return nil, boom
	})

	b := strategy.NewBreaker("test",
		strategy.WithMaxFailures(2),
		strategy.WithResetTimeout(time.Hour),
	)
	s := b.Strategy()

	for i := 0; i < 2; i++ {
		if _, err := apply(s, leaf, nil); !errors.Is(err, boom) {
			t.Fatalf("attempt %d error = %v, want %v", i, err, boom)
		}
	}

	if got := b.State(); got != strategy.StateOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	// Executions are now rejected without reaching the leaf.
	invoked := false
	probe := plait.NewLeaf("probe", func(ctx context.Context, in any) (any, error) {
		invoked = true
		return in, nil
	})
	_, err := apply(s, probe, nil)
	if err == nil || !strings.Contains(err.Error(), "is open") {
		t.Errorf("open circuit error = %v, want rejection", err)
	}
	if invoked {
		t.Error("leaf ran through an open circuit")
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	var transitions []string
	b := strategy.NewBreaker("test",
		strategy.WithMaxFailures(1),
		strategy.WithResetTimeout(10*time.Millisecond),
		strategy.WithHalfOpenProbes(1),
		strategy.WithStateChange(func(from, to strategy.BreakerState) {
			transitions = append(transitions, from.String()+">"+to.String())
		}),
	)
	s := b.Strategy()

	failing := plait.NewLeaf("failing", func(ctx context.Context, in any) (any, error) {
		return nil, errors.New("boom")
	})
	if _, err := apply(s, failing, nil); err == nil {
		t.Fatal("expected failure")
	}
	if got := b.State(); got != strategy.StateOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)

	healthy := plait.NewLeaf("healthy", func(ctx context.Context, in any) (any, error) {
		return "ok", nil
	})
	got, err := apply(s, healthy, nil)
	if err != nil {
		t.Fatalf("half-open probe error = %v", err)
	}
	if got != "ok" {
		t.Errorf("probe = %v, want ok", got)
	}
	if state := b.State(); state != strategy.StateClosed {
		t.Errorf("State() = %v, want closed", state)
	}

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestBreakerStateString(t *testing.T) {
	tests := []struct {
		state strategy.BreakerState
		want  string
	}{
		{strategy.StateClosed, "closed"},
		{strategy.StateOpen, "open"},
		{strategy.StateHalfOpen, "half-open"},
		{strategy.BreakerState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %v, want %v", got, tt.want)
		}
	}
}
