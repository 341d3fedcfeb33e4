package memstore

import (
	"time"

	"github.com/satvik8373/Rentieo/internal/domain/service"
)

// applyChanges returns a fresh record: base with changes laid over it and
// field transforms resolved.
func applyChanges(base, changes service.Record, now time.Time) service.Record {
	out := cloneRecord(base)
	if out == nil {
		out = make(service.Record, len(changes))
	}

	for key, value := range changes {
		switch v := value.(type) {
		case service.ArrayUnion:
			list := toList(out[key])
			for _, elem := range v.Elems {
				if !containsValue(list, elem) {
					list = append(list, elem)
				}
			}
			out[key] = cloneValue(list)
		case service.ArrayRemove:
			var kept []interface{}
			for _, item := range toList(out[key]) {
				if !containsValue(v.Elems, item) {
					kept = append(kept, item)
				}
			}
			if kept == nil {
				kept = []interface{}{}
			}
			out[key] = kept
		case service.Increment:
			current, _ := number(out[key])
			if _, isFloat := out[key].(float64); isFloat {
				out[key] = current + float64(v.By)
			} else {
				out[key] = int64(current) + v.By
			}
		case service.ServerTimestamp:
			out[key] = now
		default:
			out[key] = cloneValue(value)
		}
	}
	return out
}

func containsValue(list []interface{}, v interface{}) bool {
	for _, item := range list {
		if equal(item, v) {
			return true
		}
	}
	return false
}

func cloneRecord(r service.Record) service.Record {
	if r == nil {
		return nil
	}
	out := make(service.Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneRecord(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	}
	return v
}
