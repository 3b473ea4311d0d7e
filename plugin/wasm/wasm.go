// Package wasm implements WebAssembly plugin support using wazero.
package wasm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/agentstation/plait/plugin"
)

// Exported symbols a plait WASM plugin must provide.
const (
	callExport  = "__plait_call"
	allocExport = "__plait_alloc"
	freeExport  = "__plait_free"
)

// wasmPlugin implements plugin.Plugin for WebAssembly modules.
type wasmPlugin struct {
	metadata plugin.Metadata
	runtime  wazero.Runtime
	module   api.Module
	callFunc api.Function

	// One call at a time; the module's memory is shared state.
	mu sync.Mutex
}

// New instantiates a WebAssembly plugin from module bytes, applying the
// manifest's sandbox permissions: memory limit, environment allowlist,
// and filesystem mount.
func New(ctx context.Context, wasmBytes []byte, metadata plugin.Metadata) (plugin.Plugin, error) {
	runtimeConfig := wazero.NewRuntimeConfig()

	if metadata.Permissions.Memory != "" {
		limit, err := parseMemoryLimit(metadata.Permissions.Memory)
		if err != nil {
			return nil, fmt.Errorf("invalid memory limit: %w", err)
		}
		runtimeConfig = runtimeConfig.WithMemoryLimitPages(uint32(limit / 65536)) // 64KB pages
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compile WASM module: %w", err)
	}

	moduleConfig := wazero.NewModuleConfig().
		WithName(metadata.Name).
		WithStartFunctions() // Don't auto-call _start

	for _, envVar := range metadata.Permissions.Env {
		if value := os.Getenv(envVar); value != "" {
			moduleConfig = moduleConfig.WithEnv(envVar, value)
		}
	}

	// wazero currently supports one FS mount; the first permitted
	// directory wins.
	for _, path := range metadata.Permissions.Filesystem {
		if stat, err := os.Stat(path); err == nil && stat.IsDir() {
			moduleConfig = moduleConfig.WithFS(os.DirFS(path))
			break
		}
	}

	module, err := r.InstantiateModule(ctx, compiled, moduleConfig)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate WASM module: %w", err)
	}

	for _, export := range []string{callExport, allocExport} {
		if module.ExportedFunction(export) == nil {
			module.Close(ctx)
			r.Close(ctx)
			return nil, fmt.Errorf("plugin does not export required function: %s", export)
		}
	}
	if module.ExportedMemory("memory") == nil {
		module.Close(ctx)
		r.Close(ctx)
		return nil, fmt.Errorf("plugin does not export memory")
	}

	return &wasmPlugin{
		metadata: metadata,
		runtime:  r,
		module:   module,
		callFunc: module.ExportedFunction(callExport),
	}, nil
}

// Load loads a plugin from a directory containing a manifest.yaml and
// the WASM binary it names.
func Load(ctx context.Context, dir string) (plugin.Plugin, error) {
	metadata, err := plugin.ReadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	wasmBytes, err := os.ReadFile(filepath.Join(dir, metadata.Binary)) // #nosec G304 - binary path comes from the manifest
	if err != nil {
		return nil, fmt.Errorf("read WASM binary: %w", err)
	}

	return New(ctx, wasmBytes, metadata)
}

// Metadata returns the plugin's metadata.
func (p *wasmPlugin) Metadata() plugin.Metadata {
	return p.metadata
}

// Call invokes a function exported by the plugin with JSON framing over
// the module's memory.
func (p *wasmPlugin) Call(ctx context.Context, function string, input []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.metadata.Permissions.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.metadata.Permissions.Timeout)
		defer cancel()
	}

	memory := p.module.ExportedMemory("memory")
	allocFunc := p.module.ExportedFunction(allocExport)
	freeFunc := p.module.ExportedFunction(freeExport)

	inputLen := uint32(len(input))
	results, err := allocFunc.Call(ctx, uint64(inputLen))
	if err != nil {
		return nil, fmt.Errorf("allocate plugin memory: %w", err)
	}
	inputPtr := uint32(results[0])

	if !memory.Write(inputPtr, input) {
		return nil, fmt.Errorf("write input to plugin memory")
	}

	results, err = p.callFunc.Call(ctx, uint64(inputPtr), uint64(inputLen))
	if err != nil {
		return nil, fmt.Errorf("plugin call failed: %w", err)
	}

	if freeFunc != nil {
		_, _ = freeFunc.Call(ctx, uint64(inputPtr), uint64(inputLen))
	}

	resultPtr := uint32(results[0])
	resultLen := uint32(results[1])
	if resultLen == 0 {
		return nil, nil
	}

	output, ok := memory.Read(resultPtr, resultLen)
	if !ok {
		return nil, fmt.Errorf("read output from plugin memory")
	}

	// Copy out before freeing; Read returns a view into module memory
	out := make([]byte, len(output))
	copy(out, output)

	if freeFunc != nil {
		_, _ = freeFunc.Call(ctx, uint64(resultPtr), uint64(resultLen))
	}

	return out, nil
}

// Close releases plugin resources.
func (p *wasmPlugin) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.module != nil {
		p.module.Close(ctx)
	}
	if p.runtime != nil {
		return p.runtime.Close(ctx)
	}
	return nil
}

// parseMemoryLimit parses a memory limit string (e.g. "100MB", "1GB").
func parseMemoryLimit(limit string) (uint64, error) {
	var value uint64
	var unit string

	if _, err := fmt.Sscanf(limit, "%d%s", &value, &unit); err != nil {
		return 0, err
	}

	switch unit {
	case "KB":
		return value * 1024, nil
	case "MB":
		return value * 1024 * 1024, nil
	case "GB":
		return value * 1024 * 1024 * 1024, nil
	default:
		return 0, fmt.Errorf("unsupported unit: %s", unit)
	}
}
