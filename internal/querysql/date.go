package querysql

import (
	"fmt"

	"github.com/roach88/vanilla/internal/ir"
)

var dateParts = []struct {
	key    string
	format string
}{
	{"year", "%Y"},
	{"month", "%m"},
	{"monthnum", "%m"},
	{"week", "%W"},
	{"day", "%d"},
	{"hour", "%H"},
	{"minute", "%M"},
	{"second", "%S"},
}

// dateCompiler translates date_query clauses. Supported keys: year,
// month, week, day, hour, minute, second, after, before, inclusive,
// column.
type dateCompiler struct{}

func (dateCompiler) isLeaf(clause *ir.Object) bool {
	for _, k := range []string{"year", "month", "monthnum", "week", "day", "hour", "minute", "second", "after", "before"} {
		if clause.Has(k) {
			return true
		}
	}
	return false
}

func (dateCompiler) compileLeaf(path string, leaf *ir.Object) (string, []any, error) {
	col := "p.post_date"
	if c, ok := leaf.GetString("column"); ok {
		switch c {
		case "post_date", "post_date_gmt":
		case "post_modified", "post_modified_gmt":
			col = "p.post_modified"
		default:
			return "", nil, unsupported(path+".column", "column %q", c)
		}
	}

	inclusive := false
	if v, ok := leaf.Get("inclusive"); ok {
		b, isBool := v.(ir.Bool)
		inclusive = isBool && bool(b)
	}

	var conds []string
	var params []any
	for _, part := range dateParts {
		v, ok := isSet(leaf, part.key)
		if !ok {
			continue
		}
		n, ok := ir.AsInt(v)
		if !ok {
			return "", nil, unsupported(path+"."+part.key, "expected an integer")
		}
		conds = append(conds, fmt.Sprintf("CAST(strftime('%s', %s) AS INTEGER) = ?", part.format, col))
		params = append(params, n)
	}

	for _, bound := range []struct {
		key, op, opInclusive string
	}{
		{"after", ">", ">="},
		{"before", "<", "<="},
	} {
		v, ok := isSet(leaf, bound.key)
		if !ok {
			continue
		}
		ts, err := dateBound(path+"."+bound.key, v, bound.key == "before")
		if err != nil {
			return "", nil, err
		}
		op := bound.op
		if inclusive {
			op = bound.opInclusive
		}
		conds = append(conds, col+" "+op+" ?")
		params = append(params, ts)
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	sql := conds[0]
	for _, c := range conds[1:] {
		sql += " AND " + c
	}
	if len(conds) > 1 {
		sql = "(" + sql + ")"
	}
	return sql, params, nil
}

// dateBound renders an after/before value as a "YYYY-MM-DD hh:mm:ss"
// timestamp. Strings pass through; {year, month, day} objects default to
// the start of the period for after and its end for before.
func dateBound(path string, v ir.Value, end bool) (string, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case *ir.Object:
		year, ok := intField(val, "year")
		if !ok {
			return "", unsupported(path, "needs a year")
		}
		month, hasMonth := intField(val, "month")
		day, hasDay := intField(val, "day")
		if !hasMonth {
			month = 1
			if end {
				month = 12
			}
		}
		if !hasDay {
			day = 1
			if end {
				day = 31
			}
		}
		clock := "00:00:00"
		if end {
			clock = "23:59:59"
		}
		return fmt.Sprintf("%04d-%02d-%02d %s", year, month, day, clock), nil
	default:
		return "", unsupported(path, "expected a date string or object, got %T", v)
	}
}

func intField(obj *ir.Object, key string) (int64, bool) {
	v, ok := isSet(obj, key)
	if !ok {
		return 0, false
	}
	return ir.AsInt(v)
}
