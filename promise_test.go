package plait

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPromiseResolve(t *testing.T) {
	p := Resolved(42)

	got, err := p.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Get() = %v, want 42", got)
	}
}

func TestPromiseReject(t *testing.T) {
	boom := errors.New("boom")
	p := Rejected(boom)

	_, err := p.Get()
	if !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want %v", err, boom)
	}
}

func TestPromiseSettlesOnce(t *testing.T) {
	p := NewPromise()
	p.Resolve("first")
	p.Resolve("second")
	p.Reject(errors.New("late"))

	got, err := p.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "first" {
		t.Errorf("Get() = %v, want first", got)
	}
}

func TestThenChains(t *testing.T) {
	ctx := context.Background()

	p := Then(ctx, Resolved(1), func(ctx context.Context, in any) (any, error) {
		return in.(int) + 1, nil
	})
	p = Then(ctx, p, func(ctx context.Context, in any) (any, error) {
		return in.(int) * 10, nil
	})

	got, err := p.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 20 {
		t.Errorf("Get() = %v, want 20", got)
	}
}

func TestThenShortCircuitsFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	called := false
	p := Then(ctx, Rejected(boom), func(ctx context.Context, in any) (any, error) {
		called = true
		return in, nil
	})

	_, err := p.Get()
	if !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want %v", err, boom)
	}
	if called {
		t.Error("continuation ran on a rejected promise")
	}
}

func TestThenContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The upstream promise never settles; cancellation must unblock.
	p := Then(ctx, NewPromise(), func(ctx context.Context, in any) (any, error) {
		return in, nil
	})

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("promise did not settle after context cancellation")
	}

	_, err := p.Get()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}
