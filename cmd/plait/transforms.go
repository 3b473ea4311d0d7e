package main

import (
	"encoding/json"
	"fmt"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/plait/transform"
)

// transformsCmd represents the transforms command.
var transformsCmd = &cobra.Command{
	Use:   "transforms",
	Short: "List available transform types",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTransforms(transform.Catalog())
	},
}

// transformsInfoCmd shows details about one transform type.
var transformsInfoCmd = &cobra.Command{
	Use:   "info <type>",
	Short: "Show detailed information about a transform type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transformInfo(transform.Catalog(), args[0])
	},
}

// transformsDocsCmd generates markdown documentation for the catalog.
var transformsDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate transform documentation in markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return transformDocs(transform.Catalog())
	},
}

func init() {
	transformsCmd.AddCommand(transformsInfoCmd)
	transformsCmd.AddCommand(transformsDocsCmd)
	rootCmd.AddCommand(transformsCmd)
}

func listTransforms(registry *transform.Registry) error {
	types := registry.Types()

	switch output {
	case jsonFormat, yamlFormat:
		metas := make([]transform.Metadata, 0, len(types))
		for _, t := range types {
			builder, _ := registry.Get(t)
			metas = append(metas, builder.Metadata())
		}
		return renderResult(metas)

	default:
		fmt.Printf("%-12s %-10s %s\n", "TYPE", "CATEGORY", "DESCRIPTION")
		for _, t := range types {
			builder, _ := registry.Get(t)
			meta := builder.Metadata()
			fmt.Printf("%-12s %-10s %s\n", meta.Type, meta.Category, meta.Description)
		}
	}
	return nil
}

func transformInfo(registry *transform.Registry, transformType string) error {
	builder, exists := registry.Get(transformType)
	if !exists {
		return fmt.Errorf("unknown transform type %q", transformType)
	}
	meta := builder.Metadata()

	switch output {
	case jsonFormat:
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		fmt.Println(string(data))

	case yamlFormat:
		data, err := goyaml.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		fmt.Print(string(data))

	default:
		fmt.Printf("Type:        %s\n", meta.Type)
		fmt.Printf("Category:    %s\n", meta.Category)
		fmt.Printf("Description: %s\n", meta.Description)
		if meta.Since != "" {
			fmt.Printf("Since:       %s\n", meta.Since)
		}
		if len(meta.ConfigSchema) > 0 {
			schema, err := json.MarshalIndent(meta.ConfigSchema, "", "  ")
			if err == nil {
				fmt.Printf("\nConfig schema:\n%s\n", schema)
			}
		}
		for _, ex := range meta.Examples {
			fmt.Printf("\nExample: %s\n  %s\n", ex.Name, ex.Description)
		}
	}
	return nil
}

func transformDocs(registry *transform.Registry) error {
	var b strings.Builder
	b.WriteString("# Transforms\n\n")
	b.WriteString("Leaf transform types available to blueprint programs.\n")

	for _, t := range registry.Types() {
		builder, _ := registry.Get(t)
		meta := builder.Metadata()

		fmt.Fprintf(&b, "\n## %s\n\n", meta.Type)
		fmt.Fprintf(&b, "**Category:** %s\n\n", meta.Category)
		fmt.Fprintf(&b, "%s\n", meta.Description)

		if len(meta.ConfigSchema) > 0 {
			schema, err := json.MarshalIndent(meta.ConfigSchema, "", "  ")
			if err == nil {
				fmt.Fprintf(&b, "\n### Configuration\n\n```json\n%s\n```\n", schema)
			}
		}

		for _, ex := range meta.Examples {
			fmt.Fprintf(&b, "\n### Example: %s\n\n%s\n", ex.Name, ex.Description)
			if len(ex.Config) > 0 {
				config, err := goyaml.Marshal(map[string]any{"config": ex.Config})
				if err == nil {
					fmt.Fprintf(&b, "\n```yaml\n%s```\n", config)
				}
			}
		}
	}

	fmt.Print(b.String())
	return nil
}
