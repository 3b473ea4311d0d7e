// Package plugin provides the interfaces and types for plait's transform
// plugin system: externally built modules exporting leaf transforms,
// described by a manifest and loaded into a sandboxed runtime.
package plugin

import (
	"context"
	"encoding/json"
	"time"
)

// Plugin represents a loaded plugin instance.
type Plugin interface {
	// Metadata returns the plugin's metadata
	Metadata() Metadata

	// Call invokes a function exported by the plugin
	Call(ctx context.Context, function string, input []byte) ([]byte, error)

	// Close releases plugin resources
	Close(ctx context.Context) error
}

// Metadata contains plugin information, read from its manifest.
type Metadata struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
	Author      string `json:"author" yaml:"author"`
	License     string `json:"license,omitempty" yaml:"license,omitempty"`

	// Runtime is the execution environment; "wasm" is the only one
	// currently supported. Binary is the module path relative to the
	// manifest.
	Runtime string `json:"runtime" yaml:"runtime"`
	Binary  string `json:"binary" yaml:"binary"`

	// Transforms exported by the plugin.
	Transforms []TransformDefinition `json:"transforms" yaml:"transforms"`

	// Permissions granted to the plugin's sandbox.
	Permissions Permissions `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// TransformDefinition describes one transform exported by a plugin.
type TransformDefinition struct {
	Type         string         `json:"type" yaml:"type"`
	Category     string         `json:"category" yaml:"category"`
	Description  string         `json:"description" yaml:"description"`
	ConfigSchema map[string]any `json:"configSchema,omitempty" yaml:"configSchema,omitempty"`
	InputSchema  map[string]any `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty" yaml:"outputSchema,omitempty"`
}

// Permissions defines what the plugin is allowed to access.
type Permissions struct {
	// Env lists environment variable names visible inside the sandbox.
	Env []string `json:"env,omitempty" yaml:"env,omitempty"`

	// Filesystem lists directories mounted read-only into the sandbox.
	Filesystem []string `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`

	// Memory caps the sandbox's linear memory (e.g. "100MB").
	Memory string `json:"memory,omitempty" yaml:"memory,omitempty"`

	// Timeout caps the duration of a single call.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Request is the framed payload sent to a plugin's transform function.
type Request struct {
	// Transform type being invoked
	Transform string `json:"transform"`

	// Leaf configuration from the blueprint
	Config map[string]any `json:"config,omitempty"`

	// Input data
	Input json.RawMessage `json:"input,omitempty"`
}

// Response is the framed payload returned from a plugin call.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Output  json.RawMessage `json:"output,omitempty"`
}
