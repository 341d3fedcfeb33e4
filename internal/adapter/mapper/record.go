// Package mapper converts between untyped document-store records and domain
// entities. Decoding is total: a missing field or one of the wrong type
// yields the field's documented default instead of an error, since documents
// in the store may be partially written or from an older schema.
package mapper

import (
	"encoding/json"
	"strings"
	"time"
)

// now supplies the default for required timestamps that are missing.
var now = time.Now

// String returns record[key] if it is a string.
func String(record map[string]interface{}, key, def string) string {
	if s, ok := record[key].(string); ok {
		return s
	}
	return def
}

// OptionalString returns nil unless record[key] is a string.
func OptionalString(record map[string]interface{}, key string) *string {
	if s, ok := record[key].(string); ok {
		return &s
	}
	return nil
}

// Bool returns record[key] if it is a boolean.
func Bool(record map[string]interface{}, key string, def bool) bool {
	if b, ok := record[key].(bool); ok {
		return b
	}
	return def
}

// Float coerces any numeric representation to float64.
func Float(record map[string]interface{}, key string, def float64) float64 {
	if f, ok := toFloat(record[key]); ok {
		return f
	}
	return def
}

// OptionalFloat returns nil unless record[key] is numeric.
func OptionalFloat(record map[string]interface{}, key string) *float64 {
	if f, ok := toFloat(record[key]); ok {
		return &f
	}
	return nil
}

// Int coerces any numeric representation to int, truncating fractions.
func Int(record map[string]interface{}, key string, def int) int {
	if f, ok := toFloat(record[key]); ok {
		return int(f)
	}
	return def
}

// Time accepts the store's native timestamp type. Anything else, including
// raw numbers, falls back to the current time.
func Time(record map[string]interface{}, key string) time.Time {
	if t := OptionalTime(record, key); t != nil {
		return *t
	}
	return now()
}

func OptionalTime(record map[string]interface{}, key string) *time.Time {
	switch v := record[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		if v != nil {
			t := *v
			return &t
		}
	}
	return nil
}

// StringSlice keeps the string elements of a list in order and drops the rest.
// A missing or non-list value gives an empty slice.
func StringSlice(record map[string]interface{}, key string) []string {
	out := []string{}
	switch v := record[key].(type) {
	case []string:
		out = append(out, v...)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// OptionalStringSlice is StringSlice that preserves absence as nil.
func OptionalStringSlice(record map[string]interface{}, key string) []string {
	switch record[key].(type) {
	case []string, []interface{}:
		return StringSlice(record, key)
	}
	return nil
}

// Map returns a nested map value, or nil.
func Map(record map[string]interface{}, key string) map[string]interface{} {
	if m, ok := record[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// enumName is the stored form of an enum value.
func enumName(v string) string {
	return strings.ToLower(v)
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func stringOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func mapOrNil(m map[string]interface{}) interface{} {
	if m == nil {
		return nil
	}
	return m
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
