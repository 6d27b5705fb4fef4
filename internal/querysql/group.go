package querysql

import (
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// leafCompiler compiles one first-order clause of a clause group.
type leafCompiler interface {
	isLeaf(clause *ir.Object) bool
	compileLeaf(path string, clause *ir.Object) (string, []any, error)
}

// compileGroup compiles a {"relation": ..., members...} group. Members
// are combined with the group's relation (AND when absent). Empty groups
// compile to the empty string, meaning no condition.
func compileGroup(path string, group *ir.Object, lc leafCompiler) (string, []any, error) {
	rel, hasRel := group.Get("relation")
	relation := upperString(rel, hasRel, "AND")
	if relation != "AND" && relation != "OR" {
		return "", nil, unsupported(path+".relation", "relation %q is neither AND nor OR", relation)
	}

	var parts []string
	var params []any
	for _, e := range group.Entries() {
		if e.Key == "relation" {
			continue
		}
		child := path + "." + e.Key
		obj, ok := e.Value.(*ir.Object)
		if !ok {
			return "", nil, unsupported(child, "expected a clause object, got %T", e.Value)
		}

		var sql string
		var p []any
		var err error
		if lc.isLeaf(obj) {
			sql, p, err = lc.compileLeaf(child, obj)
		} else {
			sql, p, err = compileGroup(child, obj, lc)
		}
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}

	switch len(parts) {
	case 0:
		return "", nil, nil
	case 1:
		return parts[0], params, nil
	default:
		return "(" + strings.Join(parts, " "+relation+" ") + ")", params, nil
	}
}
