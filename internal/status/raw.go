package status

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StatisticsKey is where the washer's usage counters are merged into a Raw record.
const StatisticsKey = "statistics"

// Raw is one status snapshot as reported by the washer: field name to value.
// Values are usually strings of digits, occasionally JSON numbers.
type Raw map[string]any

// Int parses the field as an integer. Missing, empty or non-numeric values
// report false.
func (r Raw) Int(key string) (int, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// IntOr parses the field or returns def.
func (r Raw) IntOr(key string, def int) int {
	if v, ok := r.Int(key); ok {
		return v
	}
	return def
}

// Statistics returns the merged usage counters, if any.
func (r Raw) Statistics() map[string]any {
	stats, _ := r[StatisticsKey].(map[string]any)
	return stats
}

// Clone returns a shallow copy; nested statistics are shared.
func (r Raw) Clone() Raw {
	if r == nil {
		return nil
	}
	out := make(Raw, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
