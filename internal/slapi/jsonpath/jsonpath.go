// Package jsonpath implements the small, deliberately restricted JSONPath
// dialect the response filter understands: "$", dotted keys, "[N]" and
// "[*]". It is not a general JSONPath implementation and never will be;
// anything outside this grammar returns nil.
package jsonpath

import "strconv"

// Eval applies path to data (the result of unmarshalling a JSON document
// into interface{}) and returns the selected value, or nil if path is
// malformed or does not match.
func Eval(data any, path string) any {
	if path == "" || path[0] != '$' {
		return nil
	}

	parts, ok := splitPath(path)
	if !ok {
		return nil
	}
	result := data
	for _, part := range parts {
		if result == nil {
			return nil
		}
		if isBracket(part) {
			result = applyIndex(result, part[1:len(part)-1])
		} else {
			result = applyKey(result, part)
		}
	}
	return result
}

// splitPath tokenizes "$.a.b[0][*].c" into ["a", "b", "[0]", "[*]", "c"].
// It reports false for a '[' with no closing ']'.
func splitPath(path string) ([]string, bool) {
	var parts []string
	var current []byte
	i := 1 // skip leading '$'
	for i < len(path) {
		ch := path[i]
		switch ch {
		case '.':
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = nil
			}
		case '[':
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = nil
			}
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j >= len(path) {
				return nil, false
			}
			parts = append(parts, path[i:j+1])
			i = j
		default:
			current = append(current, ch)
		}
		i++
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts, true
}

func isBracket(part string) bool {
	return len(part) >= 2 && part[0] == '[' && part[len(part)-1] == ']'
}

// applyIndex handles "[N]" and "[*]" segments.
func applyIndex(result any, index string) any {
	if index == "*" {
		switch v := result.(type) {
		case []any:
			return v
		case map[string]any:
			values := make([]any, 0, len(v))
			for _, val := range v {
				values = append(values, val)
			}
			return values
		default:
			return nil
		}
	}

	n, err := strconv.Atoi(index)
	if err != nil {
		return nil
	}
	list, ok := result.([]any)
	if !ok || n < 0 || n >= len(list) {
		return nil
	}
	return list[n]
}

// applyKey handles a plain dotted-key segment, projecting across a list
// of objects when result is itself a list (mirrors applying a key to
// every element produced by a preceding "[*]").
func applyKey(result any, key string) any {
	switch v := result.(type) {
	case []any:
		var projected []any
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				if val, ok := obj[key]; ok {
					projected = append(projected, val)
				}
			}
		}
		if len(projected) == 0 {
			return nil
		}
		return projected
	case map[string]any:
		val, ok := v[key]
		if !ok {
			return nil
		}
		return val
	default:
		return nil
	}
}
