package querysql

import (
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

var orderColumns = map[string]string{
	"date":          "p.post_date",
	"post_date":     "p.post_date",
	"modified":      "p.post_modified",
	"post_modified": "p.post_modified",
	"title":         "p.post_title",
	"post_title":    "p.post_title",
	"name":          "p.post_name",
	"post_name":     "p.post_name",
	"ID":            "p.ID",
	"author":        "p.post_author",
	"post_author":   "p.post_author",
	"parent":        "p.post_parent",
	"post_parent":   "p.post_parent",
	"type":          "p.post_type",
	"post_type":     "p.post_type",
	"menu_order":    "p.menu_order",
	"comment_count": "p.comment_count",
}

const metaValueSubquery = "(SELECT m.meta_value FROM wp_postmeta m" +
	" WHERE m.post_id = p.ID AND m.meta_key = ? ORDER BY m.meta_id LIMIT 1)"

// orderCompiler builds the ORDER BY list.
type orderCompiler struct {
	args  *ir.Object
	named map[string]metaRef
}

// compile returns the ORDER BY expression. Every ordering ends with
// p.ID ASC so pages are stable; "none" orders by ID alone.
func (oc *orderCompiler) compile() (string, []any, error) {
	orderValue, hasOrder := oc.args.Get("order")
	direction := parseDirection(upperString(orderValue, hasOrder, "DESC"))

	var fields []ir.Entry
	orderby, _ := isSet(oc.args, "orderby")
	switch v := orderby.(type) {
	case nil:
		fields = []ir.Entry{ir.P("date", ir.String(direction))}
	case ir.String:
		s := strings.TrimSpace(string(v))
		switch strings.ToUpper(s) {
		case "", "NONE":
		case "RAND":
			return "RANDOM(), p.ID ASC", nil, nil
		default:
			for _, f := range strings.Fields(s) {
				fields = append(fields, ir.P(f, ir.String(direction)))
			}
		}
	case *ir.Object:
		fields = v.Entries()
	default:
		return "", nil, unsupported("orderby", "expected a string or an object, got %T", orderby)
	}

	var parts []string
	var params []any
	byID := false
	for _, f := range fields {
		dirValue, isString := f.Value.(ir.String)
		dir := direction
		if isString {
			dir = parseDirection(strings.ToUpper(string(dirValue)))
		}

		expr, p, err := oc.column(f.Key)
		if err != nil {
			return "", nil, err
		}
		if f.Key == "post__in" {
			parts = append(parts, expr)
		} else {
			parts = append(parts, expr+" "+dir)
		}
		params = append(params, p...)
		byID = byID || expr == "p.ID"
	}

	if !byID {
		parts = append(parts, "p.ID ASC")
	}
	return strings.Join(parts, ", "), params, nil
}

func (oc *orderCompiler) column(field string) (string, []any, error) {
	if col, ok := orderColumns[field]; ok {
		return col, nil, nil
	}

	switch field {
	case "meta_value", "meta_value_num":
		key, ok := isSet(oc.args, "meta_key")
		if !ok {
			return "", nil, unsupported("orderby."+field, "needs meta_key")
		}
		expr := metaValueSubquery
		if field == "meta_value_num" {
			expr = castExpr(expr, "NUMERIC")
		}
		return expr, []any{ir.Scalar(key)}, nil

	case "post__in":
		ids, ok := isSet(oc.args, "post__in")
		if !ok {
			return "", nil, unsupported("orderby.post__in", "needs post__in")
		}
		list, err := listParams("post__in", ids)
		if err != nil {
			return "", nil, err
		}
		if len(list) == 0 {
			return "p.ID", nil, nil
		}
		var b strings.Builder
		b.WriteString("CASE p.ID")
		params := make([]any, 0, len(list)*2)
		for i, id := range list {
			b.WriteString(" WHEN ? THEN ?")
			params = append(params, id, int64(i))
		}
		b.WriteString(" END")
		return b.String(), params, nil
	}

	if ref, ok := oc.named[field]; ok {
		return castExpr(metaValueSubquery, ref.cast), []any{ref.key}, nil
	}

	return "", nil, unsupported("orderby."+field, "unknown field")
}

// parseDirection accepts ASC and DESC; anything else is DESC.
func parseDirection(dir string) string {
	if dir == "ASC" {
		return "ASC"
	}
	return "DESC"
}
