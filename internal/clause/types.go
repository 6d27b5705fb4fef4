package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// Relation is the boolean combinator applied to a clause group.
type Relation string

const (
	AND Relation = "AND"
	OR  Relation = "OR"
)

// ParseRelation accepts "and"/"or" in any case. Empty means AND.
func ParseRelation(s string) (Relation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AND":
		return AND, nil
	case "OR":
		return OR, nil
	default:
		return "", fmt.Errorf("unknown relation %q: expected AND or OR", s)
	}
}

// Meta comparison types inferred by the short form.
const (
	TypeChar    = "CHAR"
	TypeNumeric = "NUMERIC"
)

// Taxonomy term fields inferred from the term values.
const (
	FieldSlug   = "slug"
	FieldTermID = "term_id"
)

// NotExistsPlaceholder is sent as the value of meta NOT EXISTS clauses.
// WordPress before 3.9 ignored NOT EXISTS without a value
// (https://core.trac.wordpress.org/ticket/23268).
const NotExistsPlaceholder = "https://core.trac.wordpress.org/ticket/23268"

// Body is one accumulated clause: a leaf or an already-flattened group.
//
// This is a sealed interface - only types in this package implement it.
type Body interface {
	bodyNode() // Marker method - seals interface to this package

	// Object renders the body in WP_Query array form.
	Object() *ir.Object
}

// Clause pairs a body with the relation it was declared under.
type Clause struct {
	Relation Relation
	Query    Body
}

// MetaLeaf compares one custom field.
//
// Renders as {"key", "type", "value", "compare"}.
type MetaLeaf struct {
	Key     string
	Type    string
	Value   ir.Value
	Compare string
}

func (MetaLeaf) bodyNode() {}

// Object renders the leaf.
func (m MetaLeaf) Object() *ir.Object {
	value := m.Value
	if value == nil {
		value = ir.Null{}
	}
	return ir.NewObject(
		ir.P("key", ir.String(m.Key)),
		ir.P("type", ir.String(m.Type)),
		ir.P("value", value),
		ir.P("compare", ir.String(m.Compare)),
	)
}

// TaxLeaf compares the terms attached to one taxonomy.
//
// Renders as {"taxonomy", "field", "terms", "operator"}.
type TaxLeaf struct {
	Taxonomy string
	Field    string
	Terms    ir.List
	Operator string
}

func (TaxLeaf) bodyNode() {}

// Object renders the leaf.
func (t TaxLeaf) Object() *ir.Object {
	terms := t.Terms
	if terms == nil {
		terms = ir.List{}
	}
	return ir.NewObject(
		ir.P("taxonomy", ir.String(t.Taxonomy)),
		ir.P("field", ir.String(t.Field)),
		ir.P("terms", terms),
		ir.P("operator", ir.String(t.Operator)),
	)
}

// Raw is a clause object passed through verbatim.
type Raw struct {
	Clause *ir.Object
}

func (Raw) bodyNode() {}

// Object returns a copy of the raw clause.
func (r Raw) Object() *ir.Object {
	if r.Clause == nil {
		return ir.NewObject()
	}
	return r.Clause.Clone()
}

// Group is the flattened output of a nested accumulator.
// An empty nested accumulator yields an empty group.
type Group struct {
	Clauses *ir.Object
}

func (Group) bodyNode() {}

// Object returns a copy of the group.
func (g Group) Object() *ir.Object {
	if g.Clauses == nil {
		return ir.NewObject()
	}
	return g.Clauses.Clone()
}
