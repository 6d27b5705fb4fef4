package clause

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// Kind selects the clause grammar Lint checks against.
type Kind int

const (
	KindMeta Kind = iota
	KindTax
)

func (k Kind) String() string {
	if k == KindTax {
		return "tax_query"
	}
	return "meta_query"
}

var (
	metaCompares = []string{
		"=", "!=", ">", ">=", "<", "<=",
		"LIKE", "NOT LIKE", "IN", "NOT IN", "BETWEEN", "NOT BETWEEN",
		"EXISTS", "NOT EXISTS", "REGEXP", "NOT REGEXP", "RLIKE",
	}
	metaTypes = []string{
		"NUMERIC", "BINARY", "CHAR", "DATE", "DATETIME",
		"DECIMAL", "SIGNED", "TIME", "UNSIGNED",
	}
	taxOperators = []string{"IN", "NOT IN", "AND", "EXISTS", "NOT EXISTS"}
	taxFields    = []string{"term_id", "name", "slug", "term_taxonomy_id"}
)

// LintResult lists the problems found in a built clause group.
type LintResult struct {
	// Clean is true when WP_Query accepts every clause as written.
	Clean bool

	// Warnings describes each problem with the path of the clause.
	Warnings []string
}

// Lint reports operators, types and shapes WP_Query is known not to
// accept. It never modifies the group and never blocks a query: builders
// pass input through and the engine has the final say.
func Lint(kind Kind, group *ir.Object) LintResult {
	l := &linter{kind: kind, warnings: []string{}}
	l.lintGroup(kind.String(), group)
	return LintResult{
		Clean:    len(l.warnings) == 0,
		Warnings: l.warnings,
	}
}

// linter accumulates warnings during traversal.
type linter struct {
	kind     Kind
	warnings []string
}

func (l *linter) addWarning(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *linter) lintGroup(path string, group *ir.Object) {
	if group.Len() == 0 {
		return
	}

	if rel, ok := group.Get("relation"); ok {
		if s, isString := rel.(ir.String); !isString || (s != "AND" && s != "OR") {
			l.addWarning("%s: relation %v is neither AND nor OR", path, ir.ToAny(rel))
		}
	}

	members := 0
	for _, e := range group.Entries() {
		if e.Key == "relation" {
			continue
		}
		members++
		child := path + "." + e.Key
		obj, ok := e.Value.(*ir.Object)
		if !ok {
			l.addWarning("%s: expected a clause object, got %T", child, e.Value)
			continue
		}
		if l.isLeaf(obj) {
			l.lintLeaf(child, obj)
			continue
		}
		if obj.Len() == 0 {
			l.addWarning("%s: empty nested group", child)
			continue
		}
		l.lintGroup(child, obj)
	}

	if members == 0 {
		l.addWarning("%s: relation without clauses", path)
	}
}

func (l *linter) isLeaf(obj *ir.Object) bool {
	if l.kind == KindTax {
		return obj.Has("taxonomy") || obj.Has("terms")
	}
	return obj.Has("key") || obj.Has("compare") || obj.Has("value")
}

func (l *linter) lintLeaf(path string, leaf *ir.Object) {
	if l.kind == KindTax {
		l.lintTax(path, leaf)
		return
	}
	l.lintMeta(path, leaf)
}

func (l *linter) lintMeta(path string, leaf *ir.Object) {
	compare := "="
	if s, ok := leaf.GetString("compare"); ok {
		compare = s
	}
	if !slices.Contains(metaCompares, compare) {
		l.addWarning("%s: unsupported compare %q", path, compare)
	}

	if typ, ok := leaf.GetString("type"); ok && !knownMetaType(typ) {
		l.addWarning("%s: unsupported type %q", path, typ)
	}

	value, hasValue := leaf.Get("value")
	switch compare {
	case "IN", "NOT IN":
		if hasValue && !ir.IsSequence(value) {
			l.addWarning("%s: %s expects a list value", path, compare)
		}
	case "BETWEEN", "NOT BETWEEN":
		if !ir.IsSequence(value) || len(ir.AsList(value)) != 2 {
			l.addWarning("%s: %s expects exactly two values", path, compare)
		}
	}
}

func (l *linter) lintTax(path string, leaf *ir.Object) {
	if tax, ok := leaf.GetString("taxonomy"); !ok || tax == "" {
		l.addWarning("%s: missing taxonomy", path)
	}

	operator := "IN"
	if s, ok := leaf.GetString("operator"); ok {
		operator = s
	}
	if !slices.Contains(taxOperators, operator) {
		l.addWarning("%s: unsupported operator %q", path, operator)
	}

	if field, ok := leaf.GetString("field"); ok && !slices.Contains(taxFields, field) {
		l.addWarning("%s: unsupported field %q", path, field)
	}

	if operator == "IN" || operator == "NOT IN" || operator == "AND" {
		if terms, ok := leaf.Get("terms"); !ok || len(ir.AsList(terms)) == 0 {
			l.addWarning("%s: %s without terms", path, operator)
		}
	}
}

// knownMetaType accepts the WP_Meta_Query cast types, including the
// precision form DECIMAL(10,2).
func knownMetaType(typ string) bool {
	if slices.Contains(metaTypes, typ) {
		return true
	}
	return strings.HasPrefix(typ, "DECIMAL(") && strings.HasSuffix(typ, ")")
}
