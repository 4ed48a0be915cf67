package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Record is an ordered string-keyed mapping of Values, the shape of a
// content library item's data. Setting an existing key replaces its value
// in place. The zero Record is empty and ready to use.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: map[string]Value{}}
}

// Set stores v under key.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = map[string]Value{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := NewRecord()
	if r == nil {
		return out
	}
	for _, k := range r.keys {
		out.Set(k, cloneValue(r.values[k]))
	}
	return out
}

func cloneValue(v Value) Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = cloneValue(item)
		}
		return NewArray(items...)
	case KindObject:
		return NewObject(v.obj.Clone())
	default:
		return v
	}
}

// Equal reports whether r and o hold the same keys and values, in any order.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for _, k := range r.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		rv, _ := r.Get(k)
		if !rv.Equal(ov) {
			return false
		}
	}
	return true
}

// JSON returns the compact JSON form with keys in insertion order.
func (r *Record) JSON() string {
	return string(r.appendJSON(nil))
}

func (r *Record) appendJSON(buf []byte) []byte {
	buf = append(buf, '{')
	if r != nil {
		for i, k := range r.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendQuoted(buf, k)
			buf = append(buf, ':')
			buf = r.values[k].appendJSON(buf)
		}
	}
	return append(buf, '}')
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.appendJSON(nil), nil
}

// UnmarshalJSON implements json.Unmarshaler. JSON null decodes to an empty record.
func (r *Record) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	switch v.Kind() {
	case KindNull:
		*r = Record{}
	case KindObject:
		*r = *v.obj
	default:
		return fmt.Errorf("record must be a JSON object, got %s", v.Kind())
	}
	return nil
}

// ParseRecord decodes a JSON object.
func ParseRecord(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, errors.New("empty record")
	}
	r := NewRecord()
	if err := r.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// UnionKeys returns the sorted, de-duplicated keys present in any record.
func UnionKeys(records ...*Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for _, k := range r.Keys() {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
