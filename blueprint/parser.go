package blueprint

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Parse decodes a program definition from a reader.
func Parse(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return parse(data)
}

// ParseFile decodes a program definition from a YAML file.
func ParseFile(filename string) (*Definition, error) {
	data, err := os.ReadFile(filename) // #nosec G304 - user-provided program file
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parse(data)
}

// ParseString decodes a program definition from a YAML string.
func ParseString(s string) (*Definition, error) {
	return parse([]byte(s))
}

func parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &def, nil
}

// Marshal renders a definition back to YAML.
func Marshal(def *Definition) ([]byte, error) {
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	return data, nil
}
