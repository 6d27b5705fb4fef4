package clause

import "github.com/roach88/vanilla/internal/ir"

// Accumulator collects clauses in declaration order.
// The zero value is ready to use. Not safe for concurrent use.
type Accumulator struct {
	clauses []Clause
}

// Add appends body under relation.
func (a *Accumulator) Add(relation Relation, body Body) {
	a.clauses = append(a.clauses, Clause{Relation: relation, Query: body})
}

// AddRaw appends a verbatim clause object under relation.
func (a *Accumulator) AddRaw(relation Relation, raw *ir.Object) {
	a.Add(relation, Raw{Clause: raw})
}

// Len returns the number of accumulated clauses.
func (a *Accumulator) Len() int {
	return len(a.clauses)
}

// Clauses returns the accumulated clauses in order.
func (a *Accumulator) Clauses() []Clause {
	out := make([]Clause, len(a.clauses))
	copy(out, a.clauses)
	return out
}

// Reset discards every accumulated clause.
func (a *Accumulator) Reset() {
	a.clauses = nil
}

// Flatten partitions the clauses by relation and merges them into one
// group. An empty accumulator flattens to an empty object with no
// relation key. Clauses declared under anything other than OR count as AND.
//
// A lone AND clause next to OR clauses joins the OR group as one more
// alternative instead of being required. Consumers depend on that shape.
func (a *Accumulator) Flatten() *ir.Object {
	if len(a.clauses) == 0 {
		return ir.NewObject()
	}

	var ors, ands []*ir.Object
	for _, c := range a.clauses {
		if c.Relation == OR {
			ors = append(ors, c.Query.Object())
		} else {
			ands = append(ands, c.Query.Object())
		}
	}

	if len(ors) == 0 {
		return group(AND, ands...)
	}

	switch len(ands) {
	case 0:
		return group(OR, ors...)
	case 1:
		return group(OR, append(ors, ands[0])...)
	default:
		return group(OR, append(ors, group(AND, ands...))...)
	}
}

// group builds {"relation": rel, "0": members[0], ...}.
func group(rel Relation, members ...*ir.Object) *ir.Object {
	out := ir.NewObject(ir.P("relation", ir.String(rel)))
	for _, m := range members {
		out.Push(m)
	}
	return out
}
