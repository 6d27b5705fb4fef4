package store

import (
	"fmt"
	"time"

	"github.com/roach88/vanilla/internal/ir"
)

// dateLayout is the WordPress post_date format.
const dateLayout = "2006-01-02 15:04:05"

// marshalArgs converts an argument object to canonical JSON TEXT for
// storage. Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalArgs(args *ir.Object) (string, error) {
	if args == nil {
		args = ir.NewObject()
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses canonical JSON TEXT to an argument object.
// Integers stay Int via json.Number so large IDs keep their precision.
func unmarshalArgs(data string) (*ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.NewObject(), nil
	}
	v, err := ir.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	obj, ok := v.(*ir.Object)
	if !ok {
		return nil, fmt.Errorf("unmarshal args: expected an object, got %T", v)
	}
	return obj, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
