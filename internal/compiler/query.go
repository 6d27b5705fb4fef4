package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/vanilla/internal/ir"
)

// queryFields are the labels a query definition may declare.
var queryFields = map[string]bool{
	"post_type": true, "status": true,
	"author": true, "author_not": true,
	"post": true, "post_not": true, "parent": true,
	"slug": true, "search": true,
	"order_by": true, "order": true,
	"per_page": true, "page": true, "offset": true,
	"ignore_sticky_posts": true,
	"date_query": true,
	"meta": true, "tax": true,
	"set": true,
}

var clauseFields = map[string]bool{
	"relation": true, "field": true, "compare": true,
	"value": true, "type": true, "raw": true, "group": true,
}

// CompileQuery parses a CUE value into a QueryDef.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the query struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: cheap_books: { post_type: "book", ... }`)
//	def, err := CompileQuery(v.LookupPath(cue.ParsePath("query.cheap_books")))
func CompileQuery(v cue.Value) (*ir.QueryDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, "query", queryFields); err != nil {
		return nil, err
	}

	def := &ir.QueryDef{Name: label(v)}
	var err error

	if def.PostType, err = optionalValue(v, "post_type"); err != nil {
		return nil, err
	}
	if def.Status, err = optionalStrings(v, "status"); err != nil {
		return nil, err
	}
	if def.Author, err = optionalValue(v, "author"); err != nil {
		return nil, err
	}
	if def.AuthorNot, err = optionalValue(v, "author_not"); err != nil {
		return nil, err
	}
	if def.Post, err = optionalValue(v, "post"); err != nil {
		return nil, err
	}
	if def.PostNot, err = optionalValue(v, "post_not"); err != nil {
		return nil, err
	}
	if def.Parent, err = optionalValue(v, "parent"); err != nil {
		return nil, err
	}
	if def.Slug, err = optionalString(v, "slug"); err != nil {
		return nil, err
	}
	if def.Search, err = optionalString(v, "search"); err != nil {
		return nil, err
	}
	if def.OrderBy, err = optionalValue(v, "order_by"); err != nil {
		return nil, err
	}
	if def.Order, err = optionalString(v, "order"); err != nil {
		return nil, err
	}
	if def.PerPage, err = optionalInt(v, "per_page"); err != nil {
		return nil, err
	}
	if def.Page, err = optionalInt(v, "page"); err != nil {
		return nil, err
	}
	if def.Offset, err = optionalInt(v, "offset"); err != nil {
		return nil, err
	}
	if def.IgnoreSticky, err = optionalBool(v, "ignore_sticky_posts"); err != nil {
		return nil, err
	}
	if def.Date, err = optionalValue(v, "date_query"); err != nil {
		return nil, err
	}

	if def.Meta, err = parseClauses(v, "meta"); err != nil {
		return nil, err
	}
	if def.Tax, err = parseClauses(v, "tax"); err != nil {
		return nil, err
	}

	set, err := optionalValue(v, "set")
	if err != nil {
		return nil, err
	}
	if set != nil {
		obj, ok := set.(*ir.Object)
		if !ok {
			f, _ := lookup(v, "set")
			return nil, &CompileError{Field: "set", Message: "must be a struct of raw query args", Pos: f.Pos()}
		}
		def.Set = obj
	}

	return def, nil
}

// parseClauses reads a list of clause declarations.
func parseClauses(v cue.Value, path string) ([]ir.ClauseDef, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	return clauseList(path, f)
}

func clauseList(path string, v cue.Value) ([]ir.ClauseDef, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "must be a list of clauses", Pos: v.Pos()}
	}

	var clauses []ir.ClauseDef
	for i := 0; iter.Next(); i++ {
		c, err := parseClause(fmt.Sprintf("%s[%d]", path, i), iter.Value())
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// parseClause reads one clause. Exactly one of group, raw or field must
// be declared.
func parseClause(path string, v cue.Value) (ir.ClauseDef, error) {
	var c ir.ClauseDef
	if err := checkFields(v, path, clauseFields); err != nil {
		return c, err
	}

	forms := 0
	for _, f := range []string{"group", "raw", "field"} {
		if _, ok := lookup(v, f); ok {
			forms++
		}
	}
	if forms != 1 {
		return c, &CompileError{
			Field:   path,
			Message: "clause needs exactly one of field, raw or group",
			Pos:     v.Pos(),
		}
	}

	var err error
	if c.Relation, err = optionalString(v, "relation"); err != nil {
		return c, err
	}
	c.Relation = strings.ToUpper(c.Relation)
	if c.Field, err = optionalString(v, "field"); err != nil {
		return c, err
	}
	if c.Compare, err = optionalString(v, "compare"); err != nil {
		return c, err
	}
	if c.Type, err = optionalString(v, "type"); err != nil {
		return c, err
	}
	if c.Value, err = optionalValue(v, "value"); err != nil {
		return c, err
	}

	if raw, ok := lookup(v, "raw"); ok {
		rv, err := toValue(path+".raw", raw)
		if err != nil {
			return c, err
		}
		obj, isObj := rv.(*ir.Object)
		if !isObj {
			return c, &CompileError{Field: path + ".raw", Message: "must be a struct", Pos: raw.Pos()}
		}
		c.Raw = obj
	}

	if group, ok := lookup(v, "group"); ok {
		if c.Group, err = clauseList(path+".group", group); err != nil {
			return c, err
		}
		if len(c.Group) == 0 {
			return c, &CompileError{Field: path + ".group", Message: "group needs at least one clause", Pos: group.Pos()}
		}
	}

	return c, nil
}

// checkFields rejects labels outside allowed.
func checkFields(v cue.Value, path string, allowed map[string]bool) error {
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{Field: path, Message: "must be a struct", Pos: v.Pos()}
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		if !allowed[name] {
			return &CompileError{
				Field:   path + "." + name,
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}
