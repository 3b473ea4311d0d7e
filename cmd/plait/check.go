package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/blueprint"
	"github.com/agentstation/plait/transform"
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check <file.yaml>",
	Short: "Validate a program without executing it",
	Long: `Parse a program definition, validate it, build its node tree against
the transform catalog, and compile it - without running anything.`,
	Example: `  # Validate a program file
  plait check program.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkProgram(args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkProgram(path string) error {
	def, err := blueprint.ParseFile(path)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}

	loader := blueprint.NewLoader(transform.Catalog())
	root, err := loader.Build(def)
	if err != nil {
		return fmt.Errorf("build program: %w", err)
	}

	chain := plait.Compile(root)

	fmt.Printf("%s: ok (%d instructions)\n", def.Name, chain.Len())
	return nil
}
