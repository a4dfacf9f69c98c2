package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ToNumber coerces a snapshot value to float64. Strings parse leniently;
// anything non-numeric reports false.
func ToNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToString coerces any snapshot value to its string form. Nil yields "".
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

// IsEmpty reports whether a value counts as unset: nil, blank string, empty
// array/slice, or empty map.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// looseEqual compares two values the way schema authors expect: numerically
// when both sides coerce to numbers, as booleans when either side is one, and
// by string form otherwise.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return IsEmpty(a) == IsEmpty(b) && IsEmpty(a)
	}
	if an, aok := ToNumber(a); aok {
		if bn, bok := ToNumber(b); bok {
			return an == bn
		}
	}
	if ab, ok := a.(bool); ok {
		bb, ok := toBool(b)
		return ok && ab == bb
	}
	if bb, ok := b.(bool); ok {
		ab, ok := toBool(a)
		return ok && ab == bb
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return ToString(a) == ToString(b)
}

// toBool coerces a value for comparison against a boolean. Strings convert
// only through strconv.ParseBool; "no" or "maybe" are not a truthy match.
func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		if n, ok := ToNumber(value); ok {
			return n != 0, true
		}
		return false, false
	}
}

// containsValue implements the contains operator: membership when the current
// value is array-typed, substring otherwise.
func containsValue(current, want any) bool {
	switch v := current.(type) {
	case []any:
		for _, item := range v {
			if looseEqual(item, want) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if looseEqual(item, want) {
				return true
			}
		}
		return false
	default:
		if current == nil {
			return false
		}
		return strings.Contains(ToString(current), ToString(want))
	}
}
