package querysql

import (
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// scalarParam converts a scalar argument to a SQL parameter.
// Sequences cannot be bound to a single placeholder.
func scalarParam(arg string, v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Float:
		return float64(val), nil
	case ir.Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case nil, ir.Null:
		return nil, nil
	default:
		return nil, unsupported(arg, "expected a scalar, got %T", v)
	}
}

// listParams converts a scalar or sequence argument to SQL parameters.
func listParams(arg string, v ir.Value) ([]any, error) {
	list := ir.AsList(v)
	params := make([]any, 0, len(list))
	for _, elem := range list {
		p, err := scalarParam(arg, elem)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// likeEscaper escapes LIKE wildcards for use with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern wraps s for a substring LIKE match.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// isSet reports whether key is present and not null.
func isSet(args *ir.Object, key string) (ir.Value, bool) {
	v, ok := args.Get(key)
	if !ok {
		return nil, false
	}
	if _, isNull := v.(ir.Null); isNull {
		return nil, false
	}
	return v, true
}

// upperString returns the upper-cased string form of v, or def when v is
// absent or not a string.
func upperString(v ir.Value, ok bool, def string) string {
	if !ok {
		return def
	}
	s, isString := v.(ir.String)
	if !isString || s == "" {
		return def
	}
	return strings.ToUpper(string(s))
}
