package blueprint_test

import (
	"context"
	"strings"
	"testing"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/blueprint"
	"github.com/agentstation/plait/transform"
)

const greetProgram = `
name: greet
root:
  kind: sequence
  name: main
  strategy:
    type: retry
    max_attempts: 3
  children:
    - kind: leaf
      name: render
      uses: template
      config:
        template: "Hello {{.name}}"
`

func TestLoaderRoundTrip(t *testing.T) {
	def, err := blueprint.ParseString(greetProgram)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	loader := blueprint.NewLoader(transform.Catalog())
	root, err := loader.Build(def)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, err := plait.Run(context.Background(), root, map[string]any{"name": "world"}).Get()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "Hello world" {
		t.Errorf("Run() = %v, want Hello world", got)
	}
}

func TestLoaderParallelProgram(t *testing.T) {
	def, err := blueprint.ParseString(`
name: fanout
root:
  kind: parallel
  name: both
  children:
    - kind: leaf
      name: greeting
      uses: template
      config:
        template: "hi {{.}}"
    - kind: leaf
      name: shout
      uses: template
      config:
        template: "HEY {{.}}"
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	loader := blueprint.NewLoader(transform.Catalog())
	root, err := loader.Build(def)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, err := plait.Run(context.Background(), root, "you").Get()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	merged, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Run() = %T, want map", got)
	}
	if merged["greeting"] != "hi you" || merged["shout"] != "HEY you" {
		t.Errorf("Run() = %v, want both branch results", merged)
	}
}

func TestLoaderUnknownTransform(t *testing.T) {
	def, err := blueprint.ParseString(`
name: bad
root:
  kind: leaf
  name: a
  uses: nonexistent
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	loader := blueprint.NewLoader(transform.Catalog())
	_, err = loader.Build(def)
	if err == nil || !strings.Contains(err.Error(), "unknown transform type") {
		t.Errorf("Build() error = %v, want unknown transform type", err)
	}
}

func TestLoaderUnknownStrategy(t *testing.T) {
	def, err := blueprint.ParseString(`
name: bad
root:
  kind: sequence
  name: main
  strategy:
    type: mystery
  children:
    - kind: leaf
      name: a
      uses: echo
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	loader := blueprint.NewLoader(transform.Catalog())
	_, err = loader.Build(def)
	if err == nil || !strings.Contains(err.Error(), "unknown strategy type") {
		t.Errorf("Build() error = %v, want unknown strategy type", err)
	}
}

func TestLoaderCustomStrategyType(t *testing.T) {
	def, err := blueprint.ParseString(`
name: custom
root:
  kind: sequence
  name: main
  strategy:
    type: mark
  children:
    - kind: leaf
      name: render
      uses: template
      config:
        template: "{{.}}"
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	marked := false
	loader := blueprint.NewLoader(transform.Catalog())
	loader.RegisterStrategyType("mark", func(spec *blueprint.StrategySpec) (plait.Strategy, error) {
		return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
			marked = true
			return plait.Then(ctx, pending, leaf.Transform)
		}, nil
	})

	root, err := loader.Build(def)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := plait.Run(context.Background(), root, "x").Get(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !marked {
		t.Error("custom strategy was not applied")
	}
}
