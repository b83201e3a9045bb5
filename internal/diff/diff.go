// Package diff computes structural patches between API documents and applies them.
//
// Arrays are compared as a whole: any difference replaces the entire array.
// Objects are compared key by key over the union of keys and only changed keys
// appear in the patch. Patches are JSON merge patches: a key holding null is
// the same as an absent key, and a key present before and absent after is
// emitted as nil so that Merge deletes it. An absent key is not a separate
// type here; it is never replaced by an undefined value that serialization
// would drop.
package diff

import (
	"reflect"

	"github.com/lojf/parish/internal/schema"
)

type kind int

const (
	kNull kind = iota
	kBool
	kNumber
	kString
	kArray
	kObject
	kOther
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kNull
	case bool:
		return kBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kNumber
	case string:
		return kString
	case []any:
		return kArray
	case map[string]any:
		return kObject
	default:
		return kOther
	}
}

// normalize turns typed slices and string-keyed maps into []any / map[string]any.
func normalize(v any) any {
	switch v.(type) {
	case nil, []any, map[string]any:
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	}
	return v
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float32:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	}
	return schema.AsFloat(v)
}

// Deep returns the patch that turns prev into next and whether anything changed.
func Deep(prev, next any) (any, bool) {
	prev, next = normalize(prev), normalize(next)
	kp, kn := kindOf(prev), kindOf(next)
	if kp != kn {
		return next, true
	}
	switch kp {
	case kNull:
		return nil, false
	case kNumber:
		if toFloat(prev) == toFloat(next) {
			return nil, false
		}
		return next, true
	case kArray:
		if equalArrays(prev.([]any), next.([]any)) {
			return nil, false
		}
		return next, true
	case kObject:
		return diffObjects(prev.(map[string]any), next.(map[string]any))
	case kOther:
		if reflect.DeepEqual(prev, next) {
			return nil, false
		}
		return next, true
	default:
		if prev == next {
			return nil, false
		}
		return next, true
	}
}

func equalArrays(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if _, changed := Deep(a[i], b[i]); changed {
			return false
		}
	}
	return true
}

func diffObjects(prev, next map[string]any) (any, bool) {
	out := map[string]any{}
	for k, pv := range prev {
		nv, ok := next[k]
		if !ok {
			if pv != nil {
				out[k] = nil
			}
			continue
		}
		if d, changed := Deep(pv, nv); changed {
			out[k] = d
		}
	}
	for k, nv := range next {
		if _, ok := prev[k]; !ok && nv != nil {
			out[k] = nv
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Equal reports whether a and b are structurally identical documents.
func Equal(a, b any) bool {
	_, changed := Deep(a, b)
	return !changed
}

// Patch projects updated through s and diffs it against original. The result
// is never nil; an empty map means nothing changed.
func Patch[T any](s *schema.Schema[T], original map[string]any, updated *T) map[string]any {
	next := s.ToAPI(updated)
	d, changed := Deep(original, next)
	if !changed {
		return map[string]any{}
	}
	if m, ok := d.(map[string]any); ok {
		return m
	}
	return next
}
