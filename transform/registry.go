package transform

import (
	"fmt"
	"sort"

	"github.com/agentstation/plait"
)

// Registry manages transform builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder under its metadata type.
func (r *Registry) Register(builder Builder) {
	meta := builder.Metadata()
	r.builders[meta.Type] = builder
}

// Get returns a builder by type.
func (r *Registry) Get(transformType string) (Builder, bool) {
	builder, exists := r.builders[transformType]
	return builder, exists
}

// Types returns all registered transform types, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// All returns all registered builders.
func (r *Registry) All() map[string]Builder {
	return r.builders
}

// Build validates config against the builder's schema and creates the
// transform.
func (r *Registry) Build(transformType, name string, config map[string]any) (plait.Transform, error) {
	builder, exists := r.builders[transformType]
	if !exists {
		return nil, fmt.Errorf("unknown transform type %q", transformType)
	}

	meta := builder.Metadata()
	if err := ValidateConfig(&meta, config); err != nil {
		return nil, fmt.Errorf("config validation failed for %q: %w", name, err)
	}

	return builder.Build(name, config)
}

// Catalog returns a registry preloaded with the built-in transforms.
func Catalog() *Registry {
	r := NewRegistry()

	r.Register(&EchoBuilder{})
	r.Register(&DelayBuilder{})
	r.Register(&TemplateBuilder{})
	r.Register(&JSONPathBuilder{})
	r.Register(&HTTPBuilder{})
	r.Register(&ValidateBuilder{})
	r.Register(&LuaBuilder{})

	return r
}
