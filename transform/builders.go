package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/xeipuuv/gojsonschema"

	"github.com/agentstation/plait"
	"github.com/agentstation/plait/transform/script"
)

// EchoBuilder builds echo transforms.
type EchoBuilder struct{}

// Metadata returns the transform metadata.
func (b *EchoBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "echo",
		Category:    "core",
		Description: "Outputs a message alongside the input",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "Message to output",
					"default":     "Hello from echo",
				},
			},
		},
		Examples: []Example{
			{
				Name:        "Simple echo",
				Description: "Output a message with input passthrough",
				Config:      map[string]any{"message": "Hello, World!"},
				Input:       map[string]any{"data": "test"},
				Output: map[string]any{
					"message": "Hello, World!",
					"input":   map[string]any{"data": "test"},
					"leaf":    "echo1",
				},
			},
		},
		Since: "1.0.0",
	}
}

// Build creates an echo transform.
func (b *EchoBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	message := "Hello from echo"
	if msg, ok := config["message"].(string); ok {
		message = msg
	}

	return func(ctx context.Context, input any) (any, error) {
		return map[string]any{
			"message": message,
			"input":   input,
			"leaf":    name,
		}, nil
	}, nil
}

// DelayBuilder builds delay transforms.
type DelayBuilder struct{}

// Metadata returns the transform metadata.
func (b *DelayBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "delay",
		Category:    "core",
		Description: "Delays execution for a specified duration, then passes the input through",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"duration": map[string]any{
					"type":        "string",
					"description": "Duration to delay (e.g. '1s', '500ms')",
					"default":     "1s",
				},
			},
		},
		Since: "1.0.0",
	}
}

// Build creates a delay transform.
func (b *DelayBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	duration := 1 * time.Second
	if durStr, ok := config["duration"].(string); ok {
		d, err := time.ParseDuration(durStr)
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}
		duration = d
	}

	return func(ctx context.Context, input any) (any, error) {
		select {
		case <-time.After(duration):
			return input, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

// TemplateBuilder builds template rendering transforms.
type TemplateBuilder struct{}

// Metadata returns the transform metadata.
func (b *TemplateBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "template",
		Category:    "data",
		Description: "Renders a Go text/template against the input",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []string{"template"},
			"properties": map[string]any{
				"template": map[string]any{
					"type":        "string",
					"description": "Template body; input fields are accessible as {{.field}}",
				},
				"output_format": map[string]any{
					"type": "string",
					"enum": []string{"string", "json"},
				},
			},
		},
		Examples: []Example{
			{
				Name:        "Greeting",
				Description: "Render a greeting from the input",
				Config:      map[string]any{"template": "Hello {{.name}}"},
				Input:       map[string]any{"name": "Bob"},
				Output:      "Hello Bob",
			},
		},
		Since: "1.0.0",
	}
}

// Build creates a template transform. The template is parsed at build
// time so malformed programs fail before execution.
func (b *TemplateBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	templateStr, ok := config["template"].(string)
	if !ok || templateStr == "" {
		return nil, fmt.Errorf("template is required")
	}

	outputFormat, _ := config["output_format"].(string)
	if outputFormat == "" {
		outputFormat = "string"
	}

	tmpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	return func(ctx context.Context, input any) (any, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, input); err != nil {
			return nil, fmt.Errorf("template execution failed: %w", err)
		}

		if outputFormat == "json" {
			var jsonData any
			if err := json.Unmarshal(buf.Bytes(), &jsonData); err != nil {
				return nil, fmt.Errorf("parse JSON output: %w", err)
			}
			return jsonData, nil
		}
		return buf.String(), nil
	}, nil
}

// JSONPathBuilder builds JSONPath extraction transforms.
type JSONPathBuilder struct{}

// Metadata returns the transform metadata.
func (b *JSONPathBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "jsonpath",
		Category:    "data",
		Description: "Extracts data from the input using a JSONPath expression",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []string{"path"},
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "JSONPath expression (e.g. '$.user.name')",
				},
				"multiple": map[string]any{
					"type":        "boolean",
					"description": "Return all matches as an array",
				},
				"default": map[string]any{
					"description": "Value returned when the path matches nothing",
				},
			},
		},
		Since: "1.0.0",
	}
}

// Build creates a JSONPath transform. The expression is parsed at build
// time for validation.
func (b *JSONPathBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	pathStr, ok := config["path"].(string)
	if !ok || pathStr == "" {
		return nil, fmt.Errorf("path is required")
	}

	expr, err := jp.ParseString(pathStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression: %w", err)
	}

	multiple, _ := config["multiple"].(bool)
	defaultValue := config["default"]

	return func(ctx context.Context, input any) (any, error) {
		results := expr.Get(input)

		if len(results) == 0 {
			if defaultValue != nil {
				return defaultValue, nil
			}
			if multiple {
				return []any{}, nil
			}
			return nil, nil
		}

		if multiple {
			return results, nil
		}
		return results[0], nil
	}, nil
}

// HTTPBuilder builds HTTP client transforms.
type HTTPBuilder struct{}

// Metadata returns the transform metadata.
func (b *HTTPBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "http",
		Category:    "io",
		Description: "Performs an HTTP request; non-GET methods send the input as JSON body",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []string{"url"},
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Request URL; supports {{.field}} templating from the input",
				},
				"method": map[string]any{
					"type":    "string",
					"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
					"default": "GET",
				},
				"headers": map[string]any{
					"type": "object",
				},
				"timeout": map[string]any{
					"type":    "string",
					"default": "30s",
				},
			},
		},
		Since: "1.0.0",
	}
}

// Build creates an HTTP transform.
func (b *HTTPBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	headers := make(map[string]string)
	if h, ok := config["headers"].(map[string]any); ok {
		for k, v := range h {
			headers[k] = fmt.Sprint(v)
		}
	}

	timeout := 30 * time.Second
	if timeoutStr, ok := config["timeout"].(string); ok {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		timeout = d
	}

	var urlTmpl *template.Template
	if strings.Contains(url, "{{") {
		tmpl, err := template.New(name).Parse(url)
		if err != nil {
			return nil, fmt.Errorf("invalid URL template: %w", err)
		}
		urlTmpl = tmpl
	}

	client := &http.Client{Timeout: timeout}

	return func(ctx context.Context, input any) (any, error) {
		finalURL := url
		if urlTmpl != nil {
			var buf bytes.Buffer
			if err := urlTmpl.Execute(&buf, input); err != nil {
				return nil, fmt.Errorf("URL template execution failed: %w", err)
			}
			finalURL = buf.String()
		}

		var bodyReader io.Reader
		if input != nil && method != http.MethodGet && method != http.MethodDelete {
			jsonBody, err := json.Marshal(input)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, finalURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if bodyReader != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		var body any
		if err := json.Unmarshal(data, &body); err != nil {
			body = string(data)
		}

		return map[string]any{
			"status":  resp.StatusCode,
			"headers": resp.Header,
			"body":    body,
		}, nil
	}, nil
}

// ValidateBuilder builds JSON Schema validation transforms.
type ValidateBuilder struct{}

// Metadata returns the transform metadata.
func (b *ValidateBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "validate",
		Category:    "data",
		Description: "Validates the input against a JSON Schema",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []string{"schema"},
			"properties": map[string]any{
				"schema": map[string]any{
					"type":        "object",
					"description": "Inline JSON Schema the input must satisfy",
				},
				"fail_on_error": map[string]any{
					"type":        "boolean",
					"default":     true,
					"description": "Fail the leaf on invalid input instead of reporting",
				},
			},
		},
		Since: "1.0.0",
	}
}

// Build creates a validation transform.
func (b *ValidateBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	schema, ok := config["schema"]
	if !ok {
		return nil, fmt.Errorf("schema is required")
	}

	failOnError := true
	if f, ok := config["fail_on_error"].(bool); ok {
		failOnError = f
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)

	return func(ctx context.Context, input any) (any, error) {
		result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(input))
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}

		if !result.Valid() {
			var details []any
			for _, verr := range result.Errors() {
				details = append(details, map[string]any{
					"field":       verr.Field(),
					"type":        verr.Type(),
					"description": verr.Description(),
				})
			}
			if failOnError {
				return nil, fmt.Errorf("input validation failed: %v", result.Errors())
			}
			return map[string]any{
				"valid":  false,
				"errors": details,
				"data":   input,
			}, nil
		}

		if failOnError {
			return input, nil
		}
		return map[string]any{
			"valid":  true,
			"errors": []any{},
			"data":   input,
		}, nil
	}, nil
}

// LuaBuilder builds Lua script transforms.
type LuaBuilder struct{}

// Metadata returns the transform metadata.
func (b *LuaBuilder) Metadata() Metadata {
	return Metadata{
		Type:        "lua",
		Category:    "script",
		Description: "Runs a sandboxed Lua script defining transform(input)",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []string{"script"},
			"properties": map[string]any{
				"script": map[string]any{
					"type":        "string",
					"description": "Lua source defining a transform(input) function",
				},
			},
		},
		Examples: []Example{
			{
				Name:        "Uppercase",
				Description: "Uppercase a string input",
				Config: map[string]any{
					"script": "function transform(input)\n  return string.upper(input)\nend",
				},
				Input:  "hello",
				Output: "HELLO",
			},
		},
		Since: "1.0.0",
	}
}

// Build creates a Lua transform.
func (b *LuaBuilder) Build(name string, config map[string]any) (plait.Transform, error) {
	source, ok := config["script"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("script is required")
	}
	return script.Transform(name, source)
}
