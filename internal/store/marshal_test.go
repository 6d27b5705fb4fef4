package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/ir"
)

func TestMarshalArgs_Canonical(t *testing.T) {
	data, err := marshalArgs(ir.NewObject(ir.P("zeta", ir.Int(1)), ir.P("alpha", ir.Strings("<b>"))))
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":["<b>"],"zeta":1}`, data)

	data, err = marshalArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", data)
}

func TestUnmarshalArgs(t *testing.T) {
	obj, err := unmarshalArgs(`{"post__in":[9007199254740993],"relation":"OR"}`)
	require.NoError(t, err)
	v, _ := obj.Get("post__in")
	assert.Equal(t, ir.Ints(9007199254740993), v)

	obj, err = unmarshalArgs("")
	require.NoError(t, err)
	assert.Equal(t, 0, obj.Len())

	_, err = unmarshalArgs(`[1]`)
	require.Error(t, err)
	_, err = unmarshalArgs(`{`)
	require.Error(t, err)
}

func TestDates(t *testing.T) {
	ts := time.Date(2024, 2, 29, 23, 59, 1, 0, time.UTC)
	assert.Equal(t, "2024-02-29 23:59:01", formatDate(ts))

	back, err := parseDate("2024-02-29 23:59:01")
	require.NoError(t, err)
	assert.Equal(t, ts, back)

	_, err = parseDate("2024-02-29")
	require.Error(t, err)
}
