package pipeline

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// The collator carries internal buffers, so a lock serializes access.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.IgnoreCase)
)

// SortKey orders one key of a multi-key sort.
type SortKey struct {
	Key  string
	Desc bool
}

// Sort returns the items ordered by the sort keys. The sort is stable:
// items equal on every key preserve their relative input order. Keys are
// evaluated in array order and the first non-zero comparison wins.
func Sort[T any](items []T, acc Accessor[T], keys []SortKey) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(keys) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range keys {
			c := Compare(acc(out[i], k.Key), acc(out[j], k.Key))
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

// Compare orders two values: numerics numerically with NaN sorted last,
// everything else by case-insensitive Unicode collation of the string form.
// Nil sorts last so absent fields sink to the bottom in ascending order.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		default:
			return -1
		}
	}

	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		aNaN := math.IsNaN(af)
		bNaN := math.IsNaN(bf)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
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
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	// Named numeric types reach here.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// equalSortKeys reports whether two sort specs are identical.
func equalSortKeys(a, b []SortKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
