package ir

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Object is an insertion-ordered map with PHP array semantics.
//
// Keys are strings. Positional members (what PHP stores under integer
// keys) use canonical decimal keys ("0", "1", ...) assigned by Push, so a
// clause group reads {"relation": "AND", "0": leaf, "1": leaf}.
//
// The zero value is not usable; construct with NewObject.
type Object struct {
	keys []string
	vals map[string]Value
	next int64 // next positional index, PHP nNextFreeElement
}

func (*Object) irValue() {}

// Entry is a single key/value member of an Object.
type Entry struct {
	Key   string
	Value Value
}

// Pair is a shorthand for building objects from literals.
// Example: NewObject(P("relation", String("AND")), P("key", String("color")))
func P(key string, value Value) Entry {
	return Entry{Key: key, Value: value}
}

// NewObject creates an Object holding the given entries in order.
func NewObject(entries ...Entry) *Object {
	obj := &Object{vals: make(map[string]Value, len(entries))}
	for _, e := range entries {
		obj.Set(e.Key, e.Value)
	}
	return obj
}

// IsIndex reports whether key is a positional key: a canonical
// non-negative decimal integer without leading zeros.
func IsIndex(key string) bool {
	if key == "" || len(key) > 18 {
		return false
	}
	if key != "0" && key[0] == '0' {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value Value) *Object {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = value
	if IsIndex(key) {
		n, _ := strconv.ParseInt(key, 10, 64)
		if n >= o.next {
			o.next = n + 1
		}
	}
	return o
}

// Push appends value under the next positional key and returns that key.
func (o *Object) Push(value Value) string {
	key := strconv.FormatInt(o.next, 10)
	o.Set(key, value)
	return key
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// GetString returns the value under key when it is a String.
func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key. The positional counter is not rewound.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Entries returns the members in insertion order.
func (o *Object) Entries() []Entry {
	if o == nil {
		return nil
	}
	entries := make([]Entry, len(o.keys))
	for i, k := range o.keys {
		entries[i] = Entry{Key: k, Value: o.vals[k]}
	}
	return entries
}

// Positional returns the values stored under positional keys, in order.
func (o *Object) Positional() []Value {
	var out []Value
	for _, e := range o.Entries() {
		if IsIndex(e.Key) {
			out = append(out, e.Value)
		}
	}
	return out
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	c := NewObject()
	for _, e := range o.Entries() {
		c.Set(e.Key, e.Value)
	}
	c.next = o.next
	return c
}

// Merge returns a new Object following array_merge: string keys from
// later objects overwrite earlier ones in place, positional members are
// appended and renumbered from zero.
func Merge(objs ...*Object) *Object {
	out := NewObject()
	for _, obj := range objs {
		for _, e := range obj.Entries() {
			if IsIndex(e.Key) {
				out.Push(e.Value)
				continue
			}
			out.Set(e.Key, e.Value)
		}
	}
	return out
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (o *Object) SortedKeys() []string {
	keys := o.Keys()
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// MarshalJSON implements json.Marshaler, keeping insertion order.
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for hashing.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range o.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", e.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", e.Key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the document's key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*o = *obj
	return nil
}
