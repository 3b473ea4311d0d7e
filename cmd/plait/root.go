package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	textFormat = "text"
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	// Global flags.
	verbose bool
	output  string
	noColor bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "plait",
	Short: "A compiler and executor for composable task programs",
	Long: `Plait compiles trees of composable tasks - leaves, sequences, and
parallel groups, optionally wrapped in retry or timeout strategies -
into flat reusable programs and executes them against arbitrary inputs.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&output, "output", textFormat, "Output format (text, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
