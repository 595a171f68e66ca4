// Package docjson provides a small optional-chaining lookup layer over a
// decoded JSON sub-document. Every accessor tolerates absent keys, wrong
// types and single-object-where-list-expected shapes; nothing in this
// package panics or returns an error past its boundary.
package docjson

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Value wraps one node of a decoded JSON document. The zero Value is absent.
type Value struct {
	raw     any
	present bool
}

// Decode parses a JSON document into a Value rooted at its top level.
func Decode(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return Wrap(raw), nil
}

// Wrap adapts an already-decoded value.
func Wrap(raw any) Value {
	if raw == nil {
		return Value{}
	}
	return Value{raw: raw, present: true}
}

// Absent is the canonical missing value.
func Absent() Value { return Value{} }

// Exists reports whether the node is present.
func (v Value) Exists() bool { return v.present }

// Get walks a chain of object keys and returns the node at the end.
// Any missing or non-object step yields an absent Value.
func (v Value) Get(keys ...string) Value {
	current := v
	for _, key := range keys {
		if !current.present {
			return Value{}
		}
		obj, ok := current.raw.(map[string]any)
		if !ok {
			return Value{}
		}
		next, ok := obj[key]
		if !ok || next == nil {
			return Value{}
		}
		current = Value{raw: next, present: true}
	}
	return current
}

// Has reports whether the node is an object containing the given key.
func (v Value) Has(key string) bool {
	return v.Get(key).present
}

// Or returns v when present and non-blank, otherwise the fallback. A key
// holding an empty string counts as absent here, so fallback chains skip
// past it the way they skip past a missing key.
func (v Value) Or(fallback Value) Value {
	if !v.present {
		return fallback
	}
	if text, ok := v.raw.(string); ok && strings.TrimSpace(text) == "" {
		return fallback
	}
	return v
}

// List returns the node as a list of Values. A single object (or scalar) is
// coerced into a one-element list; an absent node yields nil.
func (v Value) List() []Value {
	if !v.present {
		return nil
	}
	if items, ok := v.raw.([]any); ok {
		out := make([]Value, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			out = append(out, Value{raw: item, present: true})
		}
		return out
	}
	return []Value{v}
}

// String returns the node as a trimmed string. Numbers are formatted,
// everything else is rejected. The second return is false for absent,
// empty or non-scalar nodes.
func (v Value) String() (string, bool) {
	if !v.present {
		return "", false
	}
	switch typed := v.raw.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return "", false
		}
		return trimmed, true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

// Text is String with "" for absent values, for call sites that want a
// best-effort label rather than a presence check.
func (v Value) Text() string {
	text, _ := v.String()
	return text
}

// Number returns the node as a float64. JSON numbers pass through; numeric
// strings are parsed, tolerating French decimal commas and grouping spaces.
func (v Value) Number() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch typed := v.raw.(type) {
	case float64:
		return typed, true
	case string:
		cleaned := strings.TrimSpace(typed)
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Int returns the node as an int, accepting numeric strings.
func (v Value) Int() (int, bool) {
	num, ok := v.Number()
	if !ok {
		return 0, false
	}
	return int(num), true
}

// Contains reports whether the node's string form contains the substring.
// Used for presence markers like DIV_EN_LOTS containing "OUI".
func (v Value) Contains(sub string) bool {
	text, ok := v.String()
	if !ok {
		return false
	}
	return strings.Contains(text, sub)
}

// Keys returns the sorted object keys of the node, or nil for non-objects.
func (v Value) Keys() []string {
	obj, ok := v.raw.(map[string]any)
	if !v.present || !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
