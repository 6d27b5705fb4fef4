package query

import (
	"fmt"
	"strings"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
)

// FromDef replays a declarative query definition through a new Builder.
// Only the fields the definition sets are applied.
func FromDef(def ir.QueryDef, opts ...Option) (*Builder, error) {
	b := New(opts...)

	if def.PostType != nil {
		b.Type(def.PostType)
	}
	if len(def.Status) > 0 {
		b.Status(def.Status)
	}
	if def.Author != nil {
		b.Author(def.Author)
	}
	if def.AuthorNot != nil {
		b.AuthorNot(def.AuthorNot)
	}
	if def.Post != nil {
		b.Post(def.Post)
	}
	if def.PostNot != nil {
		b.PostNot(def.PostNot)
	}
	if def.Parent != nil {
		b.Parent(def.Parent)
	}
	if def.Slug != "" {
		b.Slug(def.Slug)
	}
	if def.Search != "" {
		b.Search(def.Search)
	}
	switch orderby := def.OrderBy.(type) {
	case nil:
	case ir.String:
		b.OrderBy(string(orderby), def.Order)
	case *ir.Object:
		b.OrderByMap(orderby)
	default:
		return nil, fmt.Errorf("query %q: order_by must be a string or an object, got %T", def.Name, def.OrderBy)
	}
	if def.PerPage != nil {
		b.PerPage(*def.PerPage)
	}
	if def.Page != nil {
		b.Page(*def.Page)
	}
	if def.Offset != nil {
		b.Offset(*def.Offset)
	}
	if def.IgnoreSticky {
		b.IgnoreStickyPosts()
	}
	if def.Date != nil {
		b.DateRaw(def.Date)
	}

	for i, c := range def.Meta {
		if err := applyMeta(b.meta, c); err != nil {
			return nil, fmt.Errorf("query %q: meta[%d]: %w", def.Name, i, err)
		}
	}
	for i, c := range def.Tax {
		if err := applyTax(b.tax, c); err != nil {
			return nil, fmt.Errorf("query %q: tax[%d]: %w", def.Name, i, err)
		}
	}

	if def.Set != nil {
		b.SetMany(def.Set)
	}
	return b, nil
}

func applyMeta(m *clause.Meta, c ir.ClauseDef) error {
	rel, err := clause.ParseRelation(c.Relation)
	if err != nil {
		return err
	}

	switch {
	case len(c.Group) > 0:
		var groupErr error
		m.Nested(rel, func(sub *clause.Meta) {
			for i, child := range c.Group {
				if err := applyMeta(sub, child); err != nil && groupErr == nil {
					groupErr = fmt.Errorf("group[%d]: %w", i, err)
				}
			}
		})
		return groupErr
	case c.Raw != nil:
		m.RawClause(rel, c.Raw)
		return nil
	case c.Field == "":
		return fmt.Errorf("clause needs a field, a raw clause or a group")
	}

	compare := strings.ToUpper(c.Compare)
	switch compare {
	case "EXISTS":
		if rel == clause.OR {
			m.OrExists(c.Field)
		} else {
			m.Exists(c.Field)
		}
		return nil
	case "NOT EXISTS":
		if rel == clause.OR {
			m.OrNotExists(c.Field)
		} else {
			m.NotExists(c.Field)
		}
		return nil
	case "":
		compare = "="
		if ir.IsSequence(c.Value) {
			compare = "IN"
		}
	}

	m.Accumulator.Add(rel, clause.NewMetaLeaf(c.Field, compare, c.Value, strings.ToUpper(c.Type)))
	return nil
}

func applyTax(t *clause.Tax, c ir.ClauseDef) error {
	rel, err := clause.ParseRelation(c.Relation)
	if err != nil {
		return err
	}

	switch {
	case len(c.Group) > 0:
		var groupErr error
		t.Nested(rel, func(sub *clause.Tax) {
			for i, child := range c.Group {
				if err := applyTax(sub, child); err != nil && groupErr == nil {
					groupErr = fmt.Errorf("group[%d]: %w", i, err)
				}
			}
		})
		return groupErr
	case c.Raw != nil:
		t.RawClause(rel, c.Raw)
		return nil
	case c.Field == "":
		return fmt.Errorf("clause needs a taxonomy, a raw clause or a group")
	}

	operator := strings.ToUpper(c.Compare)
	switch operator {
	case "EXISTS":
		if rel == clause.OR {
			t.OrExists(c.Field)
		} else {
			t.Exists(c.Field)
		}
		return nil
	case "NOT EXISTS":
		if rel == clause.OR {
			t.OrNotExists(c.Field)
		} else {
			t.NotExists(c.Field)
		}
		return nil
	case "":
		operator = "IN"
	}

	t.Accumulator.Add(rel, clause.NewTaxLeaf(c.Field, operator, c.Value))
	return nil
}
