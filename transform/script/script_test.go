package script

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestTransformString(t *testing.T) {
	fn, err := Transform("upper", `
function transform(input)
  return string.upper(input)
end`)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	got, err := fn(context.Background(), "hello")
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if got != "HELLO" {
		t.Errorf("transform = %v, want HELLO", got)
	}
}

func TestTransformTableBridging(t *testing.T) {
	fn, err := Transform("reshape", `
function transform(input)
  return {
    name = input.user,
    tags = {"a", "b"},
    count = input.count + 1,
  }
end`)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	got, err := fn(context.Background(), map[string]any{"user": "ada", "count": 2})
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}

	want := map[string]any{
		"name":  "ada",
		"tags":  []any{"a", "b"},
		"count": float64(3),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("transform = %#v, want %#v", got, want)
	}
}

func TestTransformJSONHelpers(t *testing.T) {
	fn, err := Transform("roundtrip", `
function transform(input)
  local encoded = json_encode(input)
  return json_decode(encoded)
end`)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	input := map[string]any{"k": "v"}
	got, err := fn(context.Background(), input)
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if !reflect.DeepEqual(got, input) {
		t.Errorf("transform = %v, want %v", got, input)
	}
}

func TestTransformStringHelpers(t *testing.T) {
	fn, err := Transform("clean", `
function transform(input)
  return str_replace(str_trim(input), " ", "-")
end`)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	got, err := fn(context.Background(), "  a b c  ")
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if got != "a-b-c" {
		t.Errorf("transform = %v, want a-b-c", got)
	}
}

func TestTransformMissingFunction(t *testing.T) {
	_, err := Transform("bad", `x = 1`)
	if err == nil || !strings.Contains(err.Error(), "transform") {
		t.Errorf("Transform() error = %v, want missing transform function", err)
	}
}

func TestTransformSyntaxError(t *testing.T) {
	_, err := Transform("broken", `function transform(input`)
	if err == nil {
		t.Error("Transform() accepted a syntactically invalid script")
	}
}

func TestSandboxRemovesCodeLoading(t *testing.T) {
	fn, err := Transform("escape", `
function transform(input)
  return load == nil and dofile == nil and require == nil
end`)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	got, err := fn(context.Background(), nil)
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if got != true {
		t.Error("sandbox left code-loading globals available")
	}
}
