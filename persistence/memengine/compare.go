package memengine

import (
	"bytes"
	"cmp"
	"database/sql/driver"
	"reflect"
	"strings"
	"time"

	"github.com/bruhsty/bruhsty/persistence"
)

// normalize reduces v to one of nil, bool, int64, uint64, float64, string, []byte or time.Time
// where possible. Other values are returned unchanged and only compare equal to themselves.
func normalize(v any) any {
	v = persistence.IndirectValue(v)
	if v == nil {
		return nil
	}

	switch x := v.(type) {
	case time.Time:
		return x
	case []byte:
		return x
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return v
		}

		return normalize(inner)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	default:
		return v
	}
}

// compareValues orders two normalized, non-nil values.
// The second result is false when the values have no common ordering.
func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), true
		case uint64:
			return compareIntUint(x, y), true
		case float64:
			return cmp.Compare(float64(x), y), true
		}

	case uint64:
		switch y := b.(type) {
		case uint64:
			return cmp.Compare(x, y), true
		case int64:
			return -compareIntUint(y, x), true
		case float64:
			return cmp.Compare(float64(x), y), true
		}

	case float64:
		switch y := b.(type) {
		case float64:
			return cmp.Compare(x, y), true
		case int64:
			return cmp.Compare(x, float64(y)), true
		case uint64:
			return cmp.Compare(x, float64(y)), true
		}

	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}

	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y), true
		}

	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}

	case []byte:
		if y, ok := b.([]byte); ok {
			return bytes.Compare(x, y), true
		}

	default:
		if reflect.TypeOf(a) == reflect.TypeOf(b) && reflect.TypeOf(a).Comparable() && a == b {
			return 0, true
		}
	}

	return 0, false
}

func compareIntUint(x int64, y uint64) int {
	if x < 0 {
		return -1
	}

	return cmp.Compare(uint64(x), y)
}

func compareBool(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}

// compareIdentities orders row identities for deterministic scans.
func compareIdentities(a, b any) int {
	na, nb := normalize(a), normalize(b)

	if c, ok := compareValues(na, nb); ok {
		return c
	}

	return strings.Compare(reflect.TypeOf(na).String(), reflect.TypeOf(nb).String())
}
