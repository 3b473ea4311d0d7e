package compose_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/compose"
)

func appendChain(suffix string) *plait.Chain {
	return plait.Compile(plait.NewLeaf("append"+suffix, func(ctx context.Context, in any) (any, error) {
		return in.(string) + suffix, nil
	}))
}

func TestAsLeafEmbedsChain(t *testing.T) {
	inner := appendChain("-inner")

	root := plait.NewSequence("outer", []plait.Node{
		compose.AsLeaf("embedded", inner),
		plait.NewLeaf("suffix", func(ctx context.Context, in any) (any, error) {
			return in.(string) + "-outer", nil
		}),
	})

	got, err := plait.Run(context.Background(), root, "x").Get()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "x-inner-outer" {
		t.Errorf("Run() = %v, want x-inner-outer", got)
	}
}

func TestAsLeafWrapsFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := plait.Compile(plait.NewLeaf("fail", func(ctx context.Context, in any) (any, error) {
		return nil, boom
	}))

	leaf := compose.AsLeaf("embedded", failing)
	_, err := leaf.Transform(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Fatalf("Transform() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "embedded") {
		t.Errorf("Transform() error = %v, want embedded program name in message", err)
	}
}

func TestPipelineThreadsChains(t *testing.T) {
	chains := []*plait.Chain{
		appendChain("-1"),
		appendChain("-2"),
		appendChain("-3"),
	}

	got, err := compose.Pipeline(context.Background(), chains, "x")
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if got != "x-1-2-3" {
		t.Errorf("Pipeline() = %v, want x-1-2-3", got)
	}
}

func TestPipelineReportsFailingStage(t *testing.T) {
	boom := errors.New("boom")
	chains := []*plait.Chain{
		appendChain("-1"),
		plait.Compile(plait.NewLeaf("fail", func(ctx context.Context, in any) (any, error) {
			return nil, boom
		})),
		appendChain("-3"),
	}

	_, err := compose.Pipeline(context.Background(), chains, "x")
	if !errors.Is(err, boom) {
		t.Fatalf("Pipeline() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "stage 1") {
		t.Errorf("Pipeline() error = %v, want stage position in message", err)
	}
}
