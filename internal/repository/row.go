package repository

import (
	"bytes"
	"encoding/json"
)

// Row is one result record shaped by a projection. Keys keep projection
// order, which is also the order they are serialized in. Nested relations
// are stored as Row values, or nil when the relation is absent.
type Row struct {
	keys   []string
	values map[string]any
}

func newRow(capacity int) Row {
	return Row{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// Set stores value under key, appending the key if it is new
func (r *Row) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key, or nil
func (r Row) Get(key string) any {
	return r.values[key]
}

// Lookup returns the value stored under key and whether the key exists
func (r Row) Lookup(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in projection order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of top-level fields
func (r Row) Len() int { return len(r.keys) }

// String returns the value under key when it is a string
func (r Row) String(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// Nested returns the related entity stored under key
func (r Row) Nested(key string) (Row, bool) {
	sub, ok := r.values[key].(Row)
	return sub, ok
}

// Map converts the row, including nested relations, into plain maps
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		if sub, ok := r.values[k].(Row); ok {
			out[k] = sub.Map()
			continue
		}
		out[k] = r.values[k]
	}
	return out
}

// MarshalJSON writes the fields in projection order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
