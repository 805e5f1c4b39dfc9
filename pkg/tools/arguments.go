package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oangelo/homebox-mcp/pkg/errors"
)

// Arguments is the raw argument mapping of a tool invocation.
type Arguments map[string]any

// String returns the named string argument and whether it was provided.
func (a Arguments) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringPtr returns a pointer to the named string argument, or nil when absent.
func (a Arguments) StringPtr(key string) *string {
	if s, ok := a.String(key); ok {
		return &s
	}
	return nil
}

// Int returns the named integer argument. JSON numbers arrive as float64.
func (a Arguments) Int(key string) (int, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// IntPtr returns a pointer to the named integer argument, or nil when absent.
func (a Arguments) IntPtr(key string) *int {
	if n, ok := a.Int(key); ok {
		return &n
	}
	return nil
}

// Float returns the named number argument.
func (a Arguments) Float(key string) (float64, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// FloatPtr returns a pointer to the named number argument, or nil when absent.
func (a Arguments) FloatPtr(key string) *float64 {
	if n, ok := a.Float(key); ok {
		return &n
	}
	return nil
}

// Bool returns the named boolean argument.
func (a Arguments) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// BoolPtr returns a pointer to the named boolean argument, or nil when absent.
func (a Arguments) BoolPtr(key string) *bool {
	if b, ok := a.Bool(key); ok {
		return &b
	}
	return nil
}

// StringSlice returns the named string-array argument, or nil when absent.
func (a Arguments) StringSlice(key string) []string {
	v, ok := a[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// validateArguments checks the invocation arguments against the tool's input
// schema: required fields must be present and provided fields must match the
// declared type. This runs before any backing service call is issued.
func validateArguments(tool string, schema mcp.ToolInputSchema, args Arguments) error {
	for _, required := range schema.Required {
		if _, ok := args[required]; !ok {
			return errors.NewInvalidArgumentsError(tool, required, "required field is missing")
		}
	}

	for key, value := range args {
		prop, ok := schema.Properties[key].(map[string]any)
		if !ok {
			// Unknown arguments are ignored, matching permissive MCP clients.
			continue
		}
		declared, _ := prop["type"].(string)
		if !matchesType(declared, value) {
			return errors.NewInvalidArgumentsError(tool, key, "expected type "+declared)
		}
	}
	return nil
}

func matchesType(declared string, value any) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer", "number":
		switch value.(type) {
		case float64, int:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	default:
		return true
	}
}
