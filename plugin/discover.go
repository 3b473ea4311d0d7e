package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// DefaultPaths returns the default directories searched for plugins.
func DefaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".plait", "plugins"))
	}
	return append(paths, "/usr/local/share/plait/plugins", "./plugins")
}

// Discover walks the given directories (or the defaults when none are
// given) and returns the metadata of every valid plugin manifest found.
// Invalid manifests are reported to stderr and skipped.
func Discover(paths ...string) ([]Metadata, error) {
	if len(paths) == 0 {
		paths = DefaultPaths()
	}

	var found []Metadata
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Skip unreadable entries
			}
			if info.IsDir() || info.Name() != "manifest.yaml" {
				return nil
			}

			metadata, err := ReadManifest(p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load manifest %s: %v\n", p, err)
				return nil
			}
			found = append(found, metadata)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk directory %s: %w", path, err)
		}
	}

	return found, nil
}

// ReadManifest reads and validates one plugin manifest.
func ReadManifest(path string) (Metadata, error) {
	data, err := os.ReadFile(path) // #nosec G304 - manifest path comes from discovery
	if err != nil {
		return Metadata{}, fmt.Errorf("read manifest: %w", err)
	}

	var metadata Metadata
	if err := yaml.Unmarshal(data, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("parse manifest: %w", err)
	}

	if err := validateMetadata(metadata); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

func validateMetadata(m Metadata) error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Runtime != "wasm" {
		return fmt.Errorf("plugin %s: unsupported runtime %q", m.Name, m.Runtime)
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin %s: binary is required", m.Name)
	}
	if len(m.Transforms) == 0 {
		return fmt.Errorf("plugin %s: at least one transform is required", m.Name)
	}
	for _, t := range m.Transforms {
		if t.Type == "" {
			return fmt.Errorf("plugin %s: transform type is required", m.Name)
		}
	}
	return nil
}
