package blueprint

import (
	"fmt"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/strategy"
	"github.com/agentstation/plait/transform"
)

// StrategyFactory builds a strategy from its YAML spec.
type StrategyFactory func(spec *StrategySpec) (plait.Strategy, error)

// Loader builds executable node trees from parsed definitions, resolving
// leaf `uses:` fields against a transform registry and `strategy:` blocks
// against a factory table.
type Loader struct {
	transforms *transform.Registry
	strategies map[string]StrategyFactory
}

// NewLoader creates a loader over a transform registry with the built-in
// strategy types (retry, timeout, backoff, breaker) preregistered.
func NewLoader(transforms *transform.Registry) *Loader {
	l := &Loader{
		transforms: transforms,
		strategies: make(map[string]StrategyFactory),
	}

	l.RegisterStrategyType("retry", func(spec *StrategySpec) (plait.Strategy, error) {
		return strategy.Retry(spec.MaxAttempts), nil
	})

	l.RegisterStrategyType("timeout", func(spec *StrategySpec) (plait.Strategy, error) {
		d, err := ParseDuration(spec.Duration)
		if err != nil {
			return nil, fmt.Errorf("timeout duration: %w", err)
		}
		return strategy.Timeout(d), nil
	})

	l.RegisterStrategyType("backoff", func(spec *StrategySpec) (plait.Strategy, error) {
		policy := strategy.DefaultPolicy()
		policy.MaxAttempts = spec.MaxAttempts
		policy.Jitter = spec.Jitter
		if spec.Multiplier > 0 {
			policy.Multiplier = spec.Multiplier
		}
		if d, err := ParseDuration(spec.InitialDelay); err != nil {
			return nil, fmt.Errorf("backoff initial_delay: %w", err)
		} else if d > 0 {
			policy.InitialDelay = d
		}
		if d, err := ParseDuration(spec.MaxDelay); err != nil {
			return nil, fmt.Errorf("backoff max_delay: %w", err)
		} else if d > 0 {
			policy.MaxDelay = d
		}
		return strategy.WithPolicy(policy), nil
	})

	l.RegisterStrategyType("breaker", func(spec *StrategySpec) (plait.Strategy, error) {
		var opts []strategy.BreakerOption
		if spec.MaxFailures > 0 {
			opts = append(opts, strategy.WithMaxFailures(spec.MaxFailures))
		}
		if d, err := ParseDuration(spec.ResetTimeout); err != nil {
			return nil, fmt.Errorf("breaker reset_timeout: %w", err)
		} else if d > 0 {
			opts = append(opts, strategy.WithResetTimeout(d))
		}
		return strategy.NewBreaker(spec.Type, opts...).Strategy(), nil
	})

	return l
}

// RegisterStrategyType registers a factory for a strategy type, replacing
// any previous registration under the same name.
func (l *Loader) RegisterStrategyType(name string, factory StrategyFactory) {
	l.strategies[name] = factory
}

// Build validates def and constructs its executable node tree.
func (l *Loader) Build(def *Definition) (plait.Node, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program definition: %w", err)
	}
	return l.buildNode(def.Root)
}

// BuildFile parses, validates, and builds a program from a YAML file.
func (l *Loader) BuildFile(filename string) (plait.Node, error) {
	def, err := ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return l.Build(def)
}

func (l *Loader) buildNode(spec *NodeSpec) (plait.Node, error) {
	switch spec.Kind {
	case KindLeaf:
		fn, err := l.transforms.Build(spec.Uses, spec.Name, spec.Config)
		if err != nil {
			return nil, fmt.Errorf("leaf %s: %w", spec.Name, err)
		}
		return plait.NewLeaf(spec.Name, fn), nil

	case KindSequence, KindParallel:
		children := make([]plait.Node, len(spec.Children))
		for i, childSpec := range spec.Children {
			child, err := l.buildNode(childSpec)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}

		var opts []plait.GroupOption
		if spec.Strategy != nil {
			factory, ok := l.strategies[spec.Strategy.Type]
			if !ok {
				return nil, fmt.Errorf("node %s: unknown strategy type %q", spec.Name, spec.Strategy.Type)
			}
			s, err := factory(spec.Strategy)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", spec.Name, err)
			}
			opts = append(opts, plait.WithStrategy(s))
		}

		if spec.Kind == KindSequence {
			return plait.NewSequence(spec.Name, children, opts...), nil
		}
		return plait.NewParallel(spec.Name, children, opts...), nil

	default:
		return nil, fmt.Errorf("node %s: unknown kind %q", spec.Name, spec.Kind)
	}
}
