// Package blueprint provides YAML-based program definitions for plait:
// a task tree described in a file, validated, and built into an
// executable node tree against a transform registry.
package blueprint

import (
	"fmt"
	"time"
)

// Node kinds accepted in a definition.
const (
	KindLeaf     = "leaf"
	KindSequence = "sequence"
	KindParallel = "parallel"
)

// Definition represents a complete program defined in YAML.
type Definition struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Version     string         `yaml:"version,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
	Root        *NodeSpec      `yaml:"root"`
}

// NodeSpec describes one node of the task tree in YAML form.
type NodeSpec struct {
	Kind     string         `yaml:"kind"`
	Name     string         `yaml:"name"`
	Uses     string         `yaml:"uses,omitempty"`
	Config   map[string]any `yaml:"config,omitempty"`
	Children []*NodeSpec    `yaml:"children,omitempty"`
	Strategy *StrategySpec  `yaml:"strategy,omitempty"`
}

// StrategySpec describes a strategy attached to a sequence or parallel
// node. Durations are Go duration strings ("250ms", "3s").
type StrategySpec struct {
	Type         string  `yaml:"type"`
	MaxAttempts  int     `yaml:"max_attempts,omitempty"`
	Duration     string  `yaml:"duration,omitempty"`
	InitialDelay string  `yaml:"initial_delay,omitempty"`
	MaxDelay     string  `yaml:"max_delay,omitempty"`
	Multiplier   float64 `yaml:"multiplier,omitempty"`
	Jitter       bool    `yaml:"jitter,omitempty"`
	MaxFailures  int     `yaml:"max_failures,omitempty"`
	ResetTimeout string  `yaml:"reset_timeout,omitempty"`
}

// Validate checks if the definition is structurally valid.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("program name is required")
	}
	if d.Root == nil {
		return fmt.Errorf("root node is required")
	}
	if err := d.Root.Validate(); err != nil {
		return fmt.Errorf("root: %w", err)
	}
	return nil
}

// Validate checks one node spec and its subtree.
func (n *NodeSpec) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("node name is required")
	}

	switch n.Kind {
	case KindLeaf:
		if n.Uses == "" {
			return fmt.Errorf("leaf %s: uses is required", n.Name)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("leaf %s: children not allowed", n.Name)
		}
		if n.Strategy != nil {
			return fmt.Errorf("leaf %s: strategies attach to sequence or parallel nodes", n.Name)
		}

	case KindSequence, KindParallel:
		if len(n.Children) == 0 {
			return fmt.Errorf("%s %s: at least one child is required", n.Kind, n.Name)
		}
		if n.Uses != "" {
			return fmt.Errorf("%s %s: uses is only valid on leaves", n.Kind, n.Name)
		}
		if n.Strategy != nil {
			if err := n.Strategy.Validate(); err != nil {
				return fmt.Errorf("%s %s: invalid strategy: %w", n.Kind, n.Name, err)
			}
		}
		if n.Kind == KindParallel {
			seen := make(map[string]bool, len(n.Children))
			for _, child := range n.Children {
				if seen[child.Name] {
					return fmt.Errorf("parallel %s: duplicate child name %s", n.Name, child.Name)
				}
				seen[child.Name] = true
			}
		}
		for _, child := range n.Children {
			if err := child.Validate(); err != nil {
				return fmt.Errorf("node %s: %w", n.Name, err)
			}
		}

	case "":
		return fmt.Errorf("node %s: kind is required", n.Name)
	default:
		return fmt.Errorf("node %s: unknown kind %q", n.Name, n.Kind)
	}

	return nil
}

// Validate checks one strategy spec.
func (s *StrategySpec) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("strategy type is required")
	}

	switch s.Type {
	case "retry":
		if s.MaxAttempts <= 0 {
			return fmt.Errorf("retry: max_attempts must be positive")
		}
	case "timeout":
		if s.Duration == "" {
			return fmt.Errorf("timeout: duration is required")
		}
	case "backoff":
		if s.MaxAttempts <= 0 {
			return fmt.Errorf("backoff: max_attempts must be positive")
		}
		if s.Multiplier < 0 {
			return fmt.Errorf("backoff: multiplier cannot be negative")
		}
	}

	for field, value := range map[string]string{
		"duration":      s.Duration,
		"initial_delay": s.InitialDelay,
		"max_delay":     s.MaxDelay,
		"reset_timeout": s.ResetTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}

	return nil
}

// ParseDuration parses one of the spec's duration fields, returning zero
// for the empty string.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
