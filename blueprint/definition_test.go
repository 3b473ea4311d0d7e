package blueprint

import (
	"strings"
	"testing"
)

func leafSpec(name, uses string) *NodeSpec {
	return &NodeSpec{Kind: KindLeaf, Name: name, Uses: uses}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{
			name: "valid",
			def: Definition{
				Name: "ok",
				Root: &NodeSpec{
					Kind:     KindSequence,
					Name:     "main",
					Children: []*NodeSpec{leafSpec("a", "echo")},
				},
			},
		},
		{
			name:    "missing name",
			def:     Definition{Root: leafSpec("a", "echo")},
			wantErr: "program name is required",
		},
		{
			name:    "missing root",
			def:     Definition{Name: "p"},
			wantErr: "root node is required",
		},
		{
			name: "leaf without uses",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{Kind: KindLeaf, Name: "a"},
			},
			wantErr: "uses is required",
		},
		{
			name: "sequence without children",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{Kind: KindSequence, Name: "main"},
			},
			wantErr: "at least one child",
		},
		{
			name: "unknown kind",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{Kind: "loop", Name: "main"},
			},
			wantErr: "unknown kind",
		},
		{
			name: "strategy on leaf",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{
					Kind:     KindLeaf,
					Name:     "a",
					Uses:     "echo",
					Strategy: &StrategySpec{Type: "retry", MaxAttempts: 1},
				},
			},
			wantErr: "strategies attach to sequence or parallel",
		},
		{
			name: "duplicate parallel child names",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{
					Kind: KindParallel,
					Name: "fan",
					Children: []*NodeSpec{
						leafSpec("same", "echo"),
						leafSpec("same", "echo"),
					},
				},
			},
			wantErr: "duplicate child name",
		},
		{
			name: "retry without attempts",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{
					Kind:     KindSequence,
					Name:     "main",
					Children: []*NodeSpec{leafSpec("a", "echo")},
					Strategy: &StrategySpec{Type: "retry"},
				},
			},
			wantErr: "max_attempts must be positive",
		},
		{
			name: "timeout with bad duration",
			def: Definition{
				Name: "p",
				Root: &NodeSpec{
					Kind:     KindSequence,
					Name:     "main",
					Children: []*NodeSpec{leafSpec("a", "echo")},
					Strategy: &StrategySpec{Type: "timeout", Duration: "soon"},
				},
			},
			wantErr: "invalid duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseString(t *testing.T) {
	def, err := ParseString(`
name: greet
description: renders a greeting
root:
  kind: sequence
  name: main
  children:
    - kind: leaf
      name: render
      uses: template
      config:
        template: "Hello {{.name}}"
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if def.Name != "greet" {
		t.Errorf("Name = %q, want greet", def.Name)
	}
	if def.Root == nil || len(def.Root.Children) != 1 {
		t.Fatalf("Root = %+v, want one child", def.Root)
	}
	if got := def.Root.Children[0].Uses; got != "template" {
		t.Errorf("child uses = %q, want template", got)
	}
}

func TestParseStringMalformed(t *testing.T) {
	if _, err := ParseString("name: [unclosed"); err == nil {
		t.Error("ParseString() accepted malformed YAML")
	}
}
