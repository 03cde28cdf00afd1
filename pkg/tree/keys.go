package tree

import (
	"strings"

	"github.com/go-openapi/swag"
)

// NormalizeKeys returns a copy of v where every object key is rewritten from
// snake_case to camelCase, recursively through maps and slices.
// Keys without separators are kept as they are, which makes the function
// idempotent on already normalized input.
func NormalizeKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[CamelKey(k)] = NormalizeKeys(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = NormalizeKeys(child)
		}
		return out
	default:
		return v
	}
}

// CamelKey converts a single snake_case (or kebab-case) key to camelCase.
func CamelKey(key string) string {
	if !strings.ContainsAny(key, "_-") {
		return key
	}
	trimmed := strings.Trim(key, "_-")
	if trimmed == "" {
		return key
	}
	return swag.ToJSONName(strings.ReplaceAll(trimmed, "-", "_"))
}
