package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Value
	}{
		{"nil", nil, Null{}},
		{"string", "red", String("red")},
		{"int", 42, Int(42)},
		{"int64", int64(-7), Int(-7)},
		{"uint8", uint8(3), Int(3)},
		{"float", 9.5, Float(9.5)},
		{"bool", true, Bool(true)},
		{"value passthrough", String("x"), String("x")},
		{"json integer", json.Number("12"), Int(12)},
		{"json decimal", json.Number("1.25"), Float(1.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFrom_Sequences(t *testing.T) {
	got, err := From([]string{"red", "blue"})
	require.NoError(t, err)
	assert.Equal(t, List{String("red"), String("blue")}, got)

	got, err = From([]any{1, "two", false})
	require.NoError(t, err)
	assert.Equal(t, List{Int(1), String("two"), Bool(false)}, got)

	got, err = From([]int(nil))
	require.NoError(t, err)
	assert.Equal(t, List{}, got)
}

func TestFrom_MapsSortKeys(t *testing.T) {
	got, err := From(map[string]int{"zebra": 1, "alpha": 2})
	require.NoError(t, err)

	obj, ok := got.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "zebra"}, obj.Keys())
}

func TestFrom_Unsupported(t *testing.T) {
	_, err := From(map[int]string{1: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported map key type")

	_, err = From(struct{}{})
	require.Error(t, err)
}

func TestMustFrom_Panics(t *testing.T) {
	assert.Panics(t, func() { MustFrom(make(chan int)) })
	assert.NotPanics(t, func() { MustFrom("ok") })
}

func TestToAny(t *testing.T) {
	obj := NewObject(P("a", Int(1)), P("b", Strings("x", "y")))
	got := ToAny(obj)
	assert.Equal(t, map[string]any{
		"a": int64(1),
		"b": []any{"x", "y"},
	}, got)
	assert.Nil(t, ToAny(Null{}))
}

func TestAsList(t *testing.T) {
	assert.Equal(t, List{String("a")}, AsList(String("a")))
	assert.Equal(t, List{Int(1), Int(2)}, AsList(Ints(1, 2)))
	assert.Equal(t, List{}, AsList(nil))

	obj := NewObject()
	obj.Push(Int(5))
	assert.Equal(t, List{Int(5)}, AsList(obj))
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   Value
		want int64
		ok   bool
	}{
		{Int(3), 3, true},
		{Float(4), 4, true},
		{Float(4.5), 0, false},
		{String("12"), 12, true},
		{String("x"), 0, false},
		{List{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := AsInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestScalar(t *testing.T) {
	assert.Equal(t, "abc", Scalar(String("abc")))
	assert.Equal(t, "10", Scalar(Int(10)))
	assert.Equal(t, "2.5", Scalar(Float(2.5)))
	assert.Equal(t, "1", Scalar(Bool(true)))
	assert.Equal(t, "", Scalar(List{}))
}

func TestFloat_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Float(1.5))
	require.NoError(t, err)
	assert.Equal(t, "1.5", string(data))
}

func TestList_MarshalNilAsEmpty(t *testing.T) {
	data, err := json.Marshal(List(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
