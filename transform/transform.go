// Package transform provides the catalog of leaf transforms available to
// blueprint programs: builders keyed by type, each carrying metadata and
// a JSON Schema for its configuration.
package transform

import "github.com/agentstation/plait"

// Metadata describes a transform type.
type Metadata struct {
	Type         string         `json:"type"`
	Category     string         `json:"category"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	ConfigSchema map[string]any `json:"configSchema"`
	Examples     []Example      `json:"examples,omitempty"`
	Since        string         `json:"since,omitempty"`
}

// Example shows how to use a transform.
type Example struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
	Input       any            `json:"input,omitempty"`
	Output      any            `json:"output,omitempty"`
}

// Builder creates transforms and provides metadata.
type Builder interface {
	Metadata() Metadata
	Build(name string, config map[string]any) (plait.Transform, error)
}
