package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// Tax accumulates tax_query clauses.
type Tax struct {
	Accumulator
}

// NewTax creates an empty taxonomy accumulator.
func NewTax() *Tax {
	return &Tax{}
}

// NewTaxLeaf builds a taxonomy leaf. terms is normalized to a list and
// field is slug when any term is a string, term_id otherwise.
func NewTaxLeaf(taxonomy, operator string, terms ir.Value) TaxLeaf {
	list := ir.AsList(terms)
	field := FieldTermID
	if containsString(list) {
		field = FieldSlug
	}
	return TaxLeaf{
		Taxonomy: taxonomy,
		Field:    field,
		Terms:    list,
		Operator: strings.ToUpper(operator),
	}
}

// Add declares a term comparison on taxonomy under relation.
//
//	Add(rel, taxonomy, terms)             operator IN
//	Add(rel, taxonomy, operator, terms)
func (t *Tax) Add(relation Relation, taxonomy string, args ...any) *Tax {
	operator := "IN"
	var terms ir.Value = ir.Null{}
	switch {
	case len(args) >= 2 && args[1] != nil:
		operator = fmt.Sprint(args[0])
		terms = ir.Coerce(args[1])
	case len(args) >= 1:
		terms = ir.Coerce(args[0])
	}
	t.Accumulator.Add(relation, NewTaxLeaf(taxonomy, operator, terms))
	return t
}

// And declares an AND term comparison.
func (t *Tax) And(taxonomy string, args ...any) *Tax { return t.Add(AND, taxonomy, args...) }

// Or declares an OR term comparison.
func (t *Tax) Or(taxonomy string, args ...any) *Tax { return t.Add(OR, taxonomy, args...) }

// In matches posts carrying any of terms.
func (t *Tax) In(taxonomy string, terms any) *Tax { return t.Add(AND, taxonomy, "IN", terms) }

// NotIn matches posts carrying none of terms.
func (t *Tax) NotIn(taxonomy string, terms any) *Tax { return t.Add(AND, taxonomy, "NOT IN", terms) }

// Not excludes posts carrying term.
func (t *Tax) Not(taxonomy string, term any) *Tax { return t.Add(AND, taxonomy, "!=", term) }

// Exists matches posts with at least one term in taxonomy.
func (t *Tax) Exists(taxonomy string) *Tax { return t.RawClause(AND, existsTax(taxonomy)) }

// NotExists matches posts with no term in taxonomy.
func (t *Tax) NotExists(taxonomy string) *Tax { return t.RawClause(AND, notExistsTax(taxonomy)) }

// Raw appends a verbatim clause under AND.
func (t *Tax) Raw(raw *ir.Object) *Tax { return t.RawClause(AND, raw) }

// OrIn is In under OR.
func (t *Tax) OrIn(taxonomy string, terms any) *Tax { return t.Add(OR, taxonomy, "IN", terms) }

// OrNotIn is NotIn under OR.
func (t *Tax) OrNotIn(taxonomy string, terms any) *Tax { return t.Add(OR, taxonomy, "NOT IN", terms) }

// OrNot is Not under OR.
func (t *Tax) OrNot(taxonomy string, term any) *Tax { return t.Add(OR, taxonomy, "!=", term) }

// OrExists is Exists under OR.
func (t *Tax) OrExists(taxonomy string) *Tax { return t.RawClause(OR, existsTax(taxonomy)) }

// OrNotExists is NotExists under OR.
func (t *Tax) OrNotExists(taxonomy string) *Tax { return t.RawClause(OR, notExistsTax(taxonomy)) }

// OrRaw appends a verbatim clause under OR.
func (t *Tax) OrRaw(raw *ir.Object) *Tax { return t.RawClause(OR, raw) }

// RawClause appends a verbatim clause under relation.
func (t *Tax) RawClause(relation Relation, raw *ir.Object) *Tax {
	t.AddRaw(relation, raw)
	return t
}

// Nested runs fn against a fresh accumulator and appends its flattened
// output as a single group.
func (t *Tax) Nested(relation Relation, fn func(*Tax)) *Tax {
	child := NewTax()
	fn(child)
	t.Accumulator.Add(relation, Group{Clauses: child.Build()})
	return t
}

// Build flattens the clauses. Taxonomy groups are not re-keyed.
func (t *Tax) Build() *ir.Object {
	return t.Flatten()
}

func existsTax(taxonomy string) *ir.Object {
	return ir.NewObject(
		ir.P("taxonomy", ir.String(taxonomy)),
		ir.P("operator", ir.String("EXISTS")),
	)
}

func notExistsTax(taxonomy string) *ir.Object {
	return ir.NewObject(
		ir.P("taxonomy", ir.String(taxonomy)),
		ir.P("operator", ir.String("NOT EXISTS")),
	)
}
