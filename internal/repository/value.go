package repository

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind is the value type of a projected column or a filter input
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// timeLayouts are the layouts accepted when a time arrives as text
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// IsAbsent reports whether a filter value counts as "not supplied".
//
// nil, "", numeric zero, false, the zero time and nil pointers are all absent.
// This means a filter can never match a literal 0 or false; callers that
// need that must use a dedicated filter key.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case time.Time:
		return t.IsZero()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsAbsent(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	}
	return false
}

// coerce converts a raw filter input to the declared kind.
// Inputs usually arrive as query-string text; ok is false when the
// input cannot be read as the kind, in which case the filter is skipped.
func coerce(kind Kind, v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, true
		}
		v = rv.Elem().Interface()
	}

	switch kind {
	case KindString:
		switch t := v.(type) {
		case string:
			return t, true
		case []byte:
			return string(t), true
		case int, int32, int64, float64, bool:
			return nil, false
		}
		return nil, false

	case KindInt:
		switch t := v.(type) {
		case int:
			return int64(t), true
		case int32:
			return int64(t), true
		case int64:
			return t, true
		case float64:
			if t != float64(int64(t)) {
				return nil, false
			}
			return int64(t), true
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return "", true
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, false
			}
			return n, true
		}
		return nil, false

	case KindFloat:
		switch t := v.(type) {
		case float64:
			return t, true
		case float32:
			return float64(t), true
		case int:
			return float64(t), true
		case int64:
			return float64(t), true
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return "", true
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, false
			}
			return f, true
		}
		return nil, false

	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return "", true
			}
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, false
			}
			return b, true
		}
		return nil, false

	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), true
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return "", true
			}
			if tm, ok := parseTime(s); ok {
				return tm, true
			}
			return nil, false
		}
		return nil, false
	}
	return nil, false
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalize converts a scanned driver value into the kind declared by the
// projection. SQLite and PostgreSQL disagree on booleans, counts and text,
// so every leaf goes through here before it reaches a Row.
func normalize(kind Kind, v any) any {
	if v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch kind {
	case KindInt:
		switch t := v.(type) {
		case int64:
			return t
		case int32:
			return int64(t)
		case int:
			return int64(t)
		case float64:
			return int64(t)
		case string:
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				return n
			}
		}
	case KindFloat:
		switch t := v.(type) {
		case float64:
			return t
		case float32:
			return float64(t)
		case int64:
			return float64(t)
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f
			}
		}
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t
		case int64:
			return t != 0
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b
			}
		}
	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC()
		case string:
			if tm, ok := parseTime(t); ok {
				return tm
			}
		}
	}
	return v
}
