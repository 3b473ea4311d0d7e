package plugin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/transform"
)

// Transforms adapts a loaded plugin's exported transforms into builders
// that can be registered alongside the built-in catalog, so blueprints
// can reference them with `uses:`.
func Transforms(p Plugin) []transform.Builder {
	defs := p.Metadata().Transforms
	builders := make([]transform.Builder, len(defs))
	for i, def := range defs {
		builders[i] = &pluginBuilder{plugin: p, def: def}
	}
	return builders
}

// pluginBuilder exposes one exported plugin transform as a
// transform.Builder.
type pluginBuilder struct {
	plugin Plugin
	def    TransformDefinition
}

// Metadata returns the transform metadata declared in the manifest.
func (b *pluginBuilder) Metadata() transform.Metadata {
	meta := b.plugin.Metadata()
	return transform.Metadata{
		Type:         b.def.Type,
		Category:     b.def.Category,
		Description:  b.def.Description,
		ConfigSchema: b.def.ConfigSchema,
		InputSchema:  b.def.InputSchema,
		OutputSchema: b.def.OutputSchema,
		Since:        meta.Version,
	}
}

// Build creates a transform dispatching into the plugin.
func (b *pluginBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	transformType := b.def.Type

	return func(ctx context.Context, input any) (any, error) {
		inputJSON, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("marshal input: %w", err)
		}

		reqJSON, err := json.Marshal(Request{
			Transform: transformType,
			Config:    config,
			Input:     inputJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		respJSON, err := b.plugin.Call(ctx, "transform", reqJSON)
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", b.plugin.Metadata().Name, err)
		}

		var resp Response
		if err := json.Unmarshal(respJSON, &resp); err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		if !resp.Success {
			return nil, fmt.Errorf("plugin transform %q: %s", transformType, resp.Error)
		}

		var output any
		if len(resp.Output) > 0 {
			if err := json.Unmarshal(resp.Output, &output); err != nil {
				return nil, fmt.Errorf("parse output: %w", err)
			}
		}
		return output, nil
	}, nil
}
