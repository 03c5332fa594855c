// Package timestamp normalizes the timestamp shapes that entities arrive
// with into a single comparable instant.
package timestamp

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Epoch is the instant that missing or unparseable timestamps normalize to.
var Epoch = time.Unix(0, 0).UTC()

// Seconds is the backend timestamp object: whole seconds plus nanoseconds
// since the Unix epoch.
type Seconds struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanoseconds"`
}

func (s Seconds) Time() time.Time {
	return time.Unix(s.Seconds, int64(s.Nanos)).UTC()
}

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts v to a UTC time. Numeric values are Unix epoch
// milliseconds. Anything it cannot interpret yields Epoch.
func Normalize(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return Epoch
	case time.Time:
		return fromTime(t)
	case *time.Time:
		if t == nil {
			return Epoch
		}
		return fromTime(*t)
	case Seconds:
		return t.Time()
	case *Seconds:
		if t == nil {
			return Epoch
		}
		return t.Time()
	case string:
		return parseString(t)
	case json.Number:
		return parseString(string(t))
	case int:
		return time.UnixMilli(int64(t)).UTC()
	case int32:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case float64:
		return fromFloatMillis(t)
	case float32:
		return fromFloatMillis(float64(t))
	case map[string]any:
		return fromMap(t)
	default:
		return Epoch
	}
}

func fromTime(t time.Time) time.Time {
	if t.IsZero() {
		return Epoch
	}
	return t.UTC()
}

func fromFloatMillis(f float64) time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Epoch
	}
	return time.UnixMilli(int64(f)).UTC()
}

func parseString(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return Epoch
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloatMillis(f)
	}
	return Epoch
}

// fromMap handles timestamp objects that were decoded generically, e.g.
// {"seconds": 1700000000, "nanoseconds": 0} or the "_seconds" export form.
func fromMap(m map[string]any) time.Time {
	secs, ok := number(m, "seconds", "_seconds")
	if !ok {
		return Epoch
	}
	nanos, _ := number(m, "nanoseconds", "_nanoseconds", "nanos")
	return time.Unix(int64(secs), int64(nanos)).UTC()
}

func number(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		case json.Number:
			f, err := n.Float64()
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
