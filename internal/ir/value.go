package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// Value is a sealed interface representing argument values.
// Only Null, String, Int, Float, Bool, List and *Object implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents an explicit null argument.
type Null struct{}

func (Null) irValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string argument.
type String string

func (String) irValue() {}

// Int represents an integer argument.
type Int int64

func (Int) irValue() {}

// Float represents a decimal argument (e.g. a DECIMAL meta comparison).
type Float float64

func (Float) irValue() {}

// MarshalJSON implements json.Marshaler for Float.
// NaN and infinities have no JSON form and are rejected.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported float value: %v", v)
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// Bool represents a boolean argument.
type Bool bool

func (Bool) irValue() {}

// List represents a positional sequence of values (a PHP list).
type List []Value

func (List) irValue() {}

// MarshalJSON implements json.Marshaler for List.
// A nil List encodes as [] rather than null.
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return Marshal([]Value(l))
}

// Strings returns a List of String values.
func Strings(vals ...string) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = String(v)
	}
	return l
}

// Ints returns a List of Int values.
func Ints(vals ...int64) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = Int(v)
	}
	return l
}

// From converts a Go value into a Value.
//
// Supported inputs: nil, Value, string, bool, all integer and float kinds,
// json.Number, slices/arrays of supported values and maps with string
// keys. Map keys are sorted for deterministic output since Go maps carry
// no order.
func From(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Float(f), nil
	case []any:
		l := make(List, len(val))
		for i, elem := range val {
			ev, err := From(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = ev
		}
		return l, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		obj := NewObject()
		for _, k := range keys {
			ev, err := From(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj.Set(k, ev)
		}
		return obj, nil
	}

	return fromReflect(reflect.ValueOf(v))
}

// fromReflect handles typed slices and maps ([]string, map[string]int, ...).
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List{}, nil
		}
		l := make(List, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := From(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = ev
		}
		return l, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		obj := NewObject()
		for _, k := range keys {
			ev, err := From(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj.Set(k, ev)
		}
		return obj, nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return From(rv.Elem().Interface())
	default:
		return nil, fmt.Errorf("unsupported type: %s", rv.Type())
	}
}

// MustFrom is like From but panics on unsupported input.
// Intended for literals in tests and static definitions.
func MustFrom(v any) Value {
	val, err := From(v)
	if err != nil {
		panic(fmt.Sprintf("ir.MustFrom: %v", err))
	}
	return val
}

// Coerce is like From but never fails: Go values with no argument form
// are stringified with fmt and left for the query engine to reject.
func Coerce(v any) Value {
	val, err := From(v)
	if err != nil {
		return String(fmt.Sprint(v))
	}
	return val
}

// ToAny converts a Value back into plain Go values
// (string, int64, float64, bool, nil, []any, map[string]any).
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case *Object:
		out := make(map[string]any, val.Len())
		for _, e := range val.Entries() {
			out[e.Key] = ToAny(e.Value)
		}
		return out
	default:
		return nil
	}
}

// AsList returns v as a List, wrapping scalars in a single-element list.
// Objects contribute their values in order.
func AsList(v Value) List {
	switch val := v.(type) {
	case nil:
		return List{}
	case List:
		return val
	case *Object:
		l := make(List, 0, val.Len())
		for _, e := range val.Entries() {
			l = append(l, e.Value)
		}
		return l
	default:
		return List{val}
	}
}

// IsSequence reports whether v is a List or an Object
// (the PHP is_array test).
func IsSequence(v Value) bool {
	switch v.(type) {
	case List, *Object:
		return true
	default:
		return false
	}
}

// Scalar renders a scalar value as its string form.
// Sequences and null render as the empty string.
func Scalar(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		if val {
			return "1"
		}
		return ""
	default:
		return ""
	}
}

// AsInt extracts an integer from Int, integral Float or a numeric String.
func AsInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case Int:
		return int64(val), true
	case Float:
		f := float64(val)
		if f == math.Trunc(f) {
			return int64(f), true
		}
		return 0, false
	case String:
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case Bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
