package query

import (
	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
)

// Meta adds an AND meta comparison. Arguments follow clause.Meta.Add:
// (value), (compare, value) or (compare, value, type).
func (b *Builder) Meta(key string, args ...any) *Builder {
	b.meta.And(key, args...)
	return b
}

// MetaIn matches meta values in values.
func (b *Builder) MetaIn(key string, values any) *Builder {
	b.meta.In(key, values)
	return b
}

// MetaNotIn matches meta values outside values.
func (b *Builder) MetaNotIn(key string, values any) *Builder {
	b.meta.NotIn(key, values)
	return b
}

// MetaNot matches meta values other than value.
func (b *Builder) MetaNot(key string, value any) *Builder {
	b.meta.Not(key, value)
	return b
}

// MetaExists matches posts that have key.
func (b *Builder) MetaExists(key string) *Builder {
	b.meta.Exists(key)
	return b
}

// MetaNotExists matches posts without key.
func (b *Builder) MetaNotExists(key string) *Builder {
	b.meta.NotExists(key)
	return b
}

// MetaRaw adds a verbatim meta clause.
func (b *Builder) MetaRaw(raw *ir.Object) *Builder {
	b.meta.Raw(raw)
	return b
}

// MetaGroup adds a nested AND group filled by fn.
func (b *Builder) MetaGroup(fn func(*clause.Meta)) *Builder {
	b.meta.Nested(clause.AND, fn)
	return b
}

// OrMeta adds an OR meta comparison.
func (b *Builder) OrMeta(key string, args ...any) *Builder {
	b.meta.Or(key, args...)
	return b
}

// OrMetaIn is MetaIn under OR.
func (b *Builder) OrMetaIn(key string, values any) *Builder {
	b.meta.OrIn(key, values)
	return b
}

// OrMetaNotIn is MetaNotIn under OR.
func (b *Builder) OrMetaNotIn(key string, values any) *Builder {
	b.meta.OrNotIn(key, values)
	return b
}

// OrMetaNot is MetaNot under OR.
func (b *Builder) OrMetaNot(key string, value any) *Builder {
	b.meta.OrNot(key, value)
	return b
}

// OrMetaExists is MetaExists under OR.
func (b *Builder) OrMetaExists(key string) *Builder {
	b.meta.OrExists(key)
	return b
}

// OrMetaNotExists is MetaNotExists under OR.
func (b *Builder) OrMetaNotExists(key string) *Builder {
	b.meta.OrNotExists(key)
	return b
}

// OrMetaRaw is MetaRaw under OR.
func (b *Builder) OrMetaRaw(raw *ir.Object) *Builder {
	b.meta.OrRaw(raw)
	return b
}

// OrMetaGroup adds a nested group filled by fn under OR.
func (b *Builder) OrMetaGroup(fn func(*clause.Meta)) *Builder {
	b.meta.Nested(clause.OR, fn)
	return b
}

// Tax adds an AND taxonomy comparison: (terms) or (operator, terms).
func (b *Builder) Tax(taxonomy string, args ...any) *Builder {
	b.tax.And(taxonomy, args...)
	return b
}

// TaxIn matches posts with any of terms.
func (b *Builder) TaxIn(taxonomy string, terms any) *Builder {
	b.tax.In(taxonomy, terms)
	return b
}

// TaxNotIn matches posts with none of terms.
func (b *Builder) TaxNotIn(taxonomy string, terms any) *Builder {
	b.tax.NotIn(taxonomy, terms)
	return b
}

// TaxNot excludes posts with term.
func (b *Builder) TaxNot(taxonomy string, term any) *Builder {
	b.tax.Not(taxonomy, term)
	return b
}

// TaxExists matches posts with any term in taxonomy.
func (b *Builder) TaxExists(taxonomy string) *Builder {
	b.tax.Exists(taxonomy)
	return b
}

// TaxNotExists matches posts with no term in taxonomy.
func (b *Builder) TaxNotExists(taxonomy string) *Builder {
	b.tax.NotExists(taxonomy)
	return b
}

// TaxRaw adds a verbatim taxonomy clause.
func (b *Builder) TaxRaw(raw *ir.Object) *Builder {
	b.tax.Raw(raw)
	return b
}

// TaxGroup adds a nested AND group filled by fn.
func (b *Builder) TaxGroup(fn func(*clause.Tax)) *Builder {
	b.tax.Nested(clause.AND, fn)
	return b
}

// OrTax adds an OR taxonomy comparison.
func (b *Builder) OrTax(taxonomy string, args ...any) *Builder {
	b.tax.Or(taxonomy, args...)
	return b
}

// OrTaxIn is TaxIn under OR.
func (b *Builder) OrTaxIn(taxonomy string, terms any) *Builder {
	b.tax.OrIn(taxonomy, terms)
	return b
}

// OrTaxNotIn is TaxNotIn under OR.
func (b *Builder) OrTaxNotIn(taxonomy string, terms any) *Builder {
	b.tax.OrNotIn(taxonomy, terms)
	return b
}

// OrTaxNot is TaxNot under OR.
func (b *Builder) OrTaxNot(taxonomy string, term any) *Builder {
	b.tax.OrNot(taxonomy, term)
	return b
}

// OrTaxExists is TaxExists under OR.
func (b *Builder) OrTaxExists(taxonomy string) *Builder {
	b.tax.OrExists(taxonomy)
	return b
}

// OrTaxNotExists is TaxNotExists under OR.
func (b *Builder) OrTaxNotExists(taxonomy string) *Builder {
	b.tax.OrNotExists(taxonomy)
	return b
}

// OrTaxRaw is TaxRaw under OR.
func (b *Builder) OrTaxRaw(raw *ir.Object) *Builder {
	b.tax.OrRaw(raw)
	return b
}

// OrTaxGroup adds a nested group filled by fn under OR.
func (b *Builder) OrTaxGroup(fn func(*clause.Tax)) *Builder {
	b.tax.Nested(clause.OR, fn)
	return b
}
