package querysql

import (
	"fmt"

	"github.com/roach88/vanilla/internal/ir"
)

const termObjects = "SELECT tr.object_id FROM wp_term_relationships tr" +
	" JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id" +
	" JOIN wp_terms t ON t.term_id = tt.term_id" +
	" WHERE tt.taxonomy = ?"

// taxCompiler translates tax_query leaves into p.ID IN (...) subqueries
// over the term relationship tables.
type taxCompiler struct{}

func (taxCompiler) isLeaf(clause *ir.Object) bool {
	return clause.Has("taxonomy") || clause.Has("terms")
}

func (taxCompiler) compileLeaf(path string, leaf *ir.Object) (string, []any, error) {
	taxonomy, ok := leaf.GetString("taxonomy")
	if !ok || taxonomy == "" {
		return "", nil, unsupported(path, "clause needs a taxonomy")
	}

	op, hasOp := leaf.Get("operator")
	operator := upperString(op, hasOp, "IN")
	if operator == "!=" {
		operator = "NOT IN"
	}

	fieldValue, hasField := leaf.Get("field")
	field := "term_id"
	if s, isString := fieldValue.(ir.String); hasField && isString && s != "" {
		field = string(s)
	}
	col, err := termColumn(path, field)
	if err != nil {
		return "", nil, err
	}

	params := []any{taxonomy}
	switch operator {
	case "EXISTS":
		return "p.ID IN (" + termObjects + ")", params, nil
	case "NOT EXISTS":
		return "p.ID NOT IN (" + termObjects + ")", params, nil
	case "IN", "NOT IN", "AND":
	default:
		return "", nil, unsupported(path, "operator %q", operator)
	}

	terms, _ := leaf.Get("terms")
	list, err := listParams(path, terms)
	if err != nil {
		return "", nil, err
	}
	list = distinct(list)

	if len(list) == 0 {
		// Nothing can carry zero terms; nothing is excluded by zero terms.
		if operator == "IN" {
			return "0 = 1", nil, nil
		}
		return "", nil, nil
	}

	sub := termObjects + " AND " + col + " IN (" + placeholders(len(list)) + ")"
	params = append(params, list...)

	switch operator {
	case "IN":
		return "p.ID IN (" + sub + ")", params, nil
	case "NOT IN":
		return "p.ID NOT IN (" + sub + ")", params, nil
	default: // AND
		sub += " GROUP BY tr.object_id HAVING COUNT(DISTINCT t.term_id) = ?"
		params = append(params, int64(len(list)))
		return "p.ID IN (" + sub + ")", params, nil
	}
}

func termColumn(path, field string) (string, error) {
	switch field {
	case "term_id":
		return "t.term_id", nil
	case "slug":
		return "t.slug", nil
	case "name":
		return "t.name", nil
	case "term_taxonomy_id":
		return "tt.term_taxonomy_id", nil
	default:
		return "", unsupported(path, "field %q", field)
	}
}

// distinct drops repeated parameters, keeping first occurrences.
func distinct(params []any) []any {
	seen := make(map[string]bool, len(params))
	out := params[:0:0]
	for _, p := range params {
		k := fmt.Sprintf("%T:%v", p, p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
