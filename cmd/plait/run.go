package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goyaml "github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/blueprint"
	"github.com/agentstation/plait/plugin"
	"github.com/agentstation/plait/plugin/wasm"
	"github.com/agentstation/plait/strategy"
	"github.com/agentstation/plait/transform"
)

var (
	runInput     string
	runInputFile string
	runTimeout   time.Duration
	runLogFile   string
	runPlugins   []string
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run <file.yaml>",
	Short: "Execute a program from a YAML file",
	Long:  `Compile a program definition into a chain and execute it against an input.`,
	Example: `  # Run a program with no input
  plait run program.yaml

  # Run with a JSON input
  plait run program.yaml --input '{"name": "world"}'

  # Read the input from stdin
  plait run program.yaml --input-file -

  # Abort after five seconds
  plait run program.yaml --timeout 5s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProgram(args[0])
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "Program input as a JSON value")
	runCmd.Flags().StringVar(&runInputFile, "input-file", "", "Read the program input from a JSON file ('-' for stdin)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort execution after this duration (0 = no limit)")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Also write JSON logs to this file")
	runCmd.Flags().StringSliceVar(&runPlugins, "plugins", nil, "Directories to load transform plugins from")

	rootCmd.AddCommand(runCmd)
}

func runProgram(path string) error {
	logger, logFile, err := newLogger(verbose, runLogFile)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	ctx := context.Background()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	registry := transform.Catalog()
	plugins, err := loadPlugins(ctx, registry, runPlugins)
	if err != nil {
		return err
	}
	defer func() {
		for _, p := range plugins {
			_ = p.Close(ctx)
		}
	}()

	loader := blueprint.NewLoader(registry)
	loader.RegisterStrategyType("log", func(spec *blueprint.StrategySpec) (plait.Strategy, error) {
		return strategy.Logging(logger), nil
	})

	def, err := blueprint.ParseFile(path)
	if err != nil {
		return err
	}
	root, err := loader.Build(def)
	if err != nil {
		return fmt.Errorf("load program: %w", err)
	}

	if verbose {
		logger.Info(ctx, "program loaded", "program", def.Name, "file", path)
	}

	input, err := readInput()
	if err != nil {
		return err
	}

	chain := plait.Compile(root)

	start := time.Now()
	result, err := plait.Execute(ctx, chain, input).Get()
	if err != nil {
		return fmt.Errorf("program execution failed: %w", err)
	}

	if verbose {
		logger.Info(ctx, "program completed", "program", def.Name, "duration", time.Since(start))
	}

	return renderResult(result)
}

// readInput resolves the program input from --input or --input-file.
func readInput() (any, error) {
	var data []byte
	switch {
	case runInput != "":
		data = []byte(runInput)
	case runInputFile == "-":
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	case runInputFile != "":
		var err error
		data, err = os.ReadFile(runInputFile) // #nosec G304 - user-provided input file
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
	default:
		return nil, nil
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse input as JSON: %w", err)
	}
	return input, nil
}

// loadPlugins walks the given directories for plugin manifests and
// registers each plugin's exported transforms.
func loadPlugins(ctx context.Context, registry *transform.Registry, dirs []string) ([]plugin.Plugin, error) {
	var loaded []plugin.Plugin
	for _, dir := range dirs {
		err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Skip unreadable entries
			}
			if info.IsDir() || info.Name() != "manifest.yaml" {
				return nil
			}

			plg, err := wasm.Load(ctx, filepath.Dir(p))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load plugin %s: %v\n", p, err)
				return nil
			}
			for _, builder := range plugin.Transforms(plg) {
				registry.Register(builder)
			}
			loaded = append(loaded, plg)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk plugin directory %s: %w", dir, err)
		}
	}
	return loaded, nil
}

// renderResult writes the program result in the selected output format.
func renderResult(result any) error {
	if result == nil {
		return nil
	}

	switch output {
	case jsonFormat:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))

	case yamlFormat:
		data, err := goyaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Print(string(data))

	default: // text
		data, err := goyaml.Marshal(result)
		if err != nil {
			fmt.Println(result)
			return nil
		}
		fmt.Print(string(data))
	}

	return nil
}
