package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// Meta accumulates meta_query clauses.
//
// Methods return the receiver so declarations chain:
//
//	m := clause.NewMeta(nil)
//	m.In("color", []string{"red", "blue"}).Or("price", ">", 10)
type Meta struct {
	Accumulator
	tokens TokenSource
}

// NewMeta creates a meta accumulator. A nil TokenSource uses UUIDTokens.
func NewMeta(tokens TokenSource) *Meta {
	if tokens == nil {
		tokens = UUIDTokens{}
	}
	return &Meta{tokens: tokens}
}

// NewMetaLeaf builds a comparison leaf. The operator is uppercased as-is.
// An empty typ is inferred from value: CHAR when value is a string or a
// sequence containing a string, NUMERIC otherwise.
func NewMetaLeaf(key, compare string, value ir.Value, typ string) MetaLeaf {
	if value == nil {
		value = ir.Null{}
	}
	if typ == "" {
		typ = inferType(value)
	}
	return MetaLeaf{
		Key:     key,
		Type:    typ,
		Value:   value,
		Compare: strings.ToUpper(compare),
	}
}

// Add declares a comparison on key under relation.
//
// Accepted argument forms:
//
//	Add(rel, key, value)                  compare IN for sequences, = otherwise
//	Add(rel, key, compare, value)
//	Add(rel, key, compare, value, type)
//
// A nil value in the two-argument form falls back to the short form.
func (m *Meta) Add(relation Relation, key string, args ...any) *Meta {
	compare, value, typ := shortForm(args)
	m.Accumulator.Add(relation, NewMetaLeaf(key, compare, value, typ))
	return m
}

// shortForm resolves the variadic (compare, value, type) arguments.
func shortForm(args []any) (compare string, value ir.Value, typ string) {
	if len(args) >= 3 {
		typ = strings.ToUpper(fmt.Sprint(args[2]))
	}
	if len(args) < 2 || args[1] == nil {
		var v ir.Value = ir.Null{}
		if len(args) > 0 {
			v = ir.Coerce(args[0])
		}
		if ir.IsSequence(v) {
			return "IN", v, typ
		}
		return "=", v, typ
	}
	return fmt.Sprint(args[0]), ir.Coerce(args[1]), typ
}

// And declares an AND comparison. See Add for the argument forms.
func (m *Meta) And(key string, args ...any) *Meta { return m.Add(AND, key, args...) }

// Or declares an OR comparison. See Add for the argument forms.
func (m *Meta) Or(key string, args ...any) *Meta { return m.Add(OR, key, args...) }

// In matches any of values.
func (m *Meta) In(key string, values any) *Meta { return m.Add(AND, key, "IN", values) }

// NotIn matches none of values.
func (m *Meta) NotIn(key string, values any) *Meta { return m.Add(AND, key, "NOT IN", values) }

// Not matches everything except value.
func (m *Meta) Not(key string, value any) *Meta { return m.Add(AND, key, "!=", value) }

// Exists matches posts that have key set.
func (m *Meta) Exists(key string) *Meta { return m.RawClause(AND, existsClause(key)) }

// NotExists matches posts without key.
func (m *Meta) NotExists(key string) *Meta { return m.RawClause(AND, notExistsClause(key)) }

// Raw appends a verbatim clause under AND.
func (m *Meta) Raw(raw *ir.Object) *Meta { return m.RawClause(AND, raw) }

// OrIn is In under OR.
func (m *Meta) OrIn(key string, values any) *Meta { return m.Add(OR, key, "IN", values) }

// OrNotIn is NotIn under OR.
func (m *Meta) OrNotIn(key string, values any) *Meta { return m.Add(OR, key, "NOT IN", values) }

// OrNot is Not under OR.
func (m *Meta) OrNot(key string, value any) *Meta { return m.Add(OR, key, "!=", value) }

// OrExists is Exists under OR.
func (m *Meta) OrExists(key string) *Meta { return m.RawClause(OR, existsClause(key)) }

// OrNotExists is NotExists under OR.
func (m *Meta) OrNotExists(key string) *Meta { return m.RawClause(OR, notExistsClause(key)) }

// OrRaw appends a verbatim clause under OR.
func (m *Meta) OrRaw(raw *ir.Object) *Meta { return m.RawClause(OR, raw) }

// RawClause appends a verbatim clause under relation.
func (m *Meta) RawClause(relation Relation, raw *ir.Object) *Meta {
	m.AddRaw(relation, raw)
	return m
}

// Nested runs fn against a fresh accumulator sharing this one's token
// source and appends its built output as a single group.
func (m *Meta) Nested(relation Relation, fn func(*Meta)) *Meta {
	child := NewMeta(m.tokens)
	fn(child)
	m.Accumulator.Add(relation, Group{Clauses: child.Build()})
	return m
}

// Build flattens the clauses and names the leaves by meta key.
func (m *Meta) Build() *ir.Object {
	return Name(m.Flatten(), m.tokens)
}

func existsClause(key string) *ir.Object {
	return ir.NewObject(
		ir.P("key", ir.String(key)),
		ir.P("compare", ir.String("EXISTS")),
	)
}

func notExistsClause(key string) *ir.Object {
	return ir.NewObject(
		ir.P("key", ir.String(key)),
		ir.P("compare", ir.String("NOT EXISTS")),
		ir.P("value", ir.String(NotExistsPlaceholder)),
	)
}

// inferType reports CHAR for strings and sequences holding any string.
func inferType(v ir.Value) string {
	if _, ok := v.(ir.String); ok {
		return TypeChar
	}
	if ir.IsSequence(v) && containsString(v) {
		return TypeChar
	}
	return TypeNumeric
}

func containsString(v ir.Value) bool {
	for _, elem := range ir.AsList(v) {
		if _, ok := elem.(ir.String); ok {
			return true
		}
	}
	return false
}
