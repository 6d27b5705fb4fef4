package querysql

import (
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// metaCompiler translates meta_query leaves into EXISTS subqueries on
// wp_postmeta. Negated comparisons (!=, NOT IN, ...) match posts that
// have the key with a non-matching value, as WP_Meta_Query does.
type metaCompiler struct{}

func (metaCompiler) isLeaf(clause *ir.Object) bool {
	return clause.Has("key") || clause.Has("value")
}

func (metaCompiler) compileLeaf(path string, leaf *ir.Object) (string, []any, error) {
	key, hasKey := isSet(leaf, "key")
	value, hasValue := isSet(leaf, "value")

	defCompare := "="
	if hasValue && ir.IsSequence(value) {
		defCompare = "IN"
	}
	cmp, hasCompare := leaf.Get("compare")
	compare := upperString(cmp, hasCompare, defCompare)

	typ, hasType := leaf.Get("type")
	cast, err := castType(path, upperString(typ, hasType, "CHAR"))
	if err != nil {
		return "", nil, err
	}

	var params []any
	base := "SELECT 1 FROM wp_postmeta m WHERE m.post_id = p.ID"
	if hasKey {
		base += " AND m.meta_key = ?"
		params = append(params, ir.Scalar(key))
	}

	switch compare {
	case "EXISTS", "NOT EXISTS":
		if !hasKey {
			return "", nil, unsupported(path, "%s needs a key", compare)
		}
		return compare + " (" + base + ")", params, nil
	}

	// Without a value only the key is matched.
	if !hasValue {
		if !hasKey {
			return "", nil, unsupported(path, "clause needs a key or a value")
		}
		return "EXISTS (" + base + ")", params, nil
	}

	col := castExpr("m.meta_value", cast)
	var cond string
	switch compare {
	case "=", "!=", ">", ">=", "<", "<=":
		p, err := scalarParam(path, value)
		if err != nil {
			return "", nil, err
		}
		cond = col + " " + compare + " " + castExpr("?", cast)
		params = append(params, p)

	case "IN", "NOT IN":
		list, err := listParams(path, value)
		if err != nil {
			return "", nil, err
		}
		if len(list) == 0 {
			return "", nil, unsupported(path, "%s needs at least one value", compare)
		}
		cond = col + " " + compare + " (" + castPlaceholders(len(list), cast) + ")"
		params = append(params, list...)

	case "LIKE", "NOT LIKE":
		if ir.IsSequence(value) {
			return "", nil, unsupported(path, "%s needs a scalar value", compare)
		}
		cond = "m.meta_value " + compare + ` ? ESCAPE '\'`
		params = append(params, containsPattern(ir.Scalar(value)))

	case "BETWEEN", "NOT BETWEEN":
		list, err := listParams(path, value)
		if err != nil {
			return "", nil, err
		}
		if len(list) != 2 {
			return "", nil, unsupported(path, "%s needs exactly two values, got %d", compare, len(list))
		}
		cond = col + " " + compare + " " + castExpr("?", cast) + " AND " + castExpr("?", cast)
		params = append(params, list...)

	default:
		return "", nil, unsupported(path, "compare %q", compare)
	}

	return "EXISTS (" + base + " AND " + cond + ")", params, nil
}

// castType maps a meta type to a SQLite storage class. The empty string
// means text comparison without a cast.
func castType(path, typ string) (string, error) {
	switch {
	case typ == "CHAR", typ == "DATE", typ == "DATETIME", typ == "TIME":
		return "", nil
	case typ == "NUMERIC":
		return "NUMERIC", nil
	case typ == "SIGNED", typ == "UNSIGNED":
		return "INTEGER", nil
	case typ == "DECIMAL", strings.HasPrefix(typ, "DECIMAL("):
		return "REAL", nil
	case typ == "BINARY":
		return "BLOB", nil
	default:
		return "", unsupported(path, "type %q", typ)
	}
}

func castExpr(expr, cast string) string {
	if cast == "" {
		return expr
	}
	return "CAST(" + expr + " AS " + cast + ")"
}

func castPlaceholders(n int, cast string) string {
	if cast == "" {
		return placeholders(n)
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = castExpr("?", cast)
	}
	return strings.Join(parts, ", ")
}

// metaRef is a named meta_query clause usable as an orderby field.
type metaRef struct {
	key  string
	cast string
}

// namedClauses collects the named leaves of a meta_query so orderby can
// refer to them by name.
func namedClauses(group *ir.Object, out map[string]metaRef) {
	for _, e := range group.Entries() {
		obj, ok := e.Value.(*ir.Object)
		if !ok || e.Key == "relation" {
			continue
		}
		if !(metaCompiler{}).isLeaf(obj) {
			namedClauses(obj, out)
			continue
		}
		key, hasKey := isSet(obj, "key")
		if ir.IsIndex(e.Key) || !hasKey {
			continue
		}
		typ, hasType := obj.Get("type")
		cast, err := castType(e.Key, upperString(typ, hasType, "CHAR"))
		if err != nil {
			continue
		}
		out[e.Key] = metaRef{key: ir.Scalar(key), cast: cast}
	}
}
