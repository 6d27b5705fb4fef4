package querysql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// PostColumns is the column list of every compiled SELECT, in the order
// the store scans them.
const PostColumns = "p.ID, p.post_author, p.post_date, p.post_modified, p.post_title, p.post_name," +
	" p.post_content, p.post_excerpt, p.post_status, p.post_type, p.post_parent, p.menu_order," +
	" p.guid, p.comment_count"

// DefaultPerPage is the page size used when posts_per_page is absent or 0.
const DefaultPerPage int64 = 10

// knownArgs are the arguments the compiler understands. Anything else is
// reported in Compiled.Ignored, the way WP_Query ignores unknown vars.
var knownArgs = []string{
	"post_type", "post_status",
	"author__in", "author__not_in", "author_name",
	"p", "post__in", "post__not_in",
	"post_parent", "post_parent__in", "post_parent__not_in",
	"name", "s",
	"meta_query", "tax_query", "date_query",
	"orderby", "order", "meta_key",
	"posts_per_page", "paged", "offset", "nopaging",
	"ignore_sticky_posts",
}

// Compiled is a WP_Query argument object translated to SQLite.
type Compiled struct {
	// SQL selects one page of PostColumns.
	SQL    string
	Params []any

	// CountSQL counts all matches, ignoring paging.
	CountSQL    string
	CountParams []any

	// PerPage is the page size, -1 when unlimited.
	PerPage int64
	Page    int64
	Offset  int64

	// Ignored lists the arguments that had no effect.
	Ignored []string
}

// SQLCompiler compiles WP_Query argument objects to parameterized SQL
// for SQLite against the WordPress table layout.
//
// CRITICAL: every SELECT ends its ORDER BY with p.ID so paging is stable.
// CRITICAL: values are always parameters, never interpolated.
type SQLCompiler struct {
	DefaultPerPage int64
}

// NewSQLCompiler creates a compiler with the WordPress default page size.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{DefaultPerPage: DefaultPerPage}
}

// Compile translates args. Unsupported shapes return *UnsupportedError.
func (c *SQLCompiler) Compile(args *ir.Object) (*Compiled, error) {
	if args == nil {
		args = ir.NewObject()
	}

	w := &where{}
	if err := c.compileFilters(args, w); err != nil {
		return nil, err
	}

	named := make(map[string]metaRef)
	if mq, ok := args.Get("meta_query"); ok {
		if obj, isObj := mq.(*ir.Object); isObj {
			namedClauses(obj, named)
		}
	}
	oc := &orderCompiler{args: args, named: named}
	orderSQL, orderParams, err := oc.compile()
	if err != nil {
		return nil, err
	}

	perPage, page, offset, err := c.paging(args)
	if err != nil {
		return nil, err
	}

	whereSQL := w.sql()
	out := &Compiled{
		SQL: fmt.Sprintf("SELECT %s FROM wp_posts p WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
			PostColumns, whereSQL, orderSQL),
		CountSQL:    "SELECT COUNT(*) FROM wp_posts p WHERE " + whereSQL,
		CountParams: slices.Clone(w.params),
		PerPage:     perPage,
		Page:        page,
		Offset:      offset,
		Ignored:     ignoredArgs(args),
	}
	out.Params = append(append(slices.Clone(w.params), orderParams...), perPage, offset)
	return out, nil
}

// where accumulates AND-ed conditions.
type where struct {
	conds  []string
	params []any
}

func (w *where) add(cond string, params ...any) {
	if cond == "" {
		return
	}
	w.conds = append(w.conds, cond)
	w.params = append(w.params, params...)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return "1 = 1"
	}
	return strings.Join(w.conds, " AND ")
}

func (c *SQLCompiler) compileFilters(args *ir.Object, w *where) error {
	if err := inFilter(args, w, "post_type", "p.post_type", "post", "any"); err != nil {
		return err
	}
	if err := inFilter(args, w, "post_status", "p.post_status", "publish", "any"); err != nil {
		return err
	}

	for _, f := range []struct {
		arg, col string
		negate   bool
	}{
		{"author__in", "p.post_author", false},
		{"author__not_in", "p.post_author", true},
		{"post__in", "p.ID", false},
		{"post__not_in", "p.ID", true},
		{"post_parent__in", "p.post_parent", false},
		{"post_parent__not_in", "p.post_parent", true},
	} {
		if err := listFilter(args, w, f.arg, f.col, f.negate); err != nil {
			return err
		}
	}

	for _, f := range []struct{ arg, col string }{
		{"p", "p.ID"},
		{"post_parent", "p.post_parent"},
		{"name", "p.post_name"},
	} {
		v, ok := isSet(args, f.arg)
		if !ok {
			continue
		}
		param, err := scalarParam(f.arg, v)
		if err != nil {
			return err
		}
		w.add(f.col+" = ?", param)
	}

	if v, ok := isSet(args, "author_name"); ok {
		w.add("p.post_author IN (SELECT u.ID FROM wp_users u WHERE u.user_nicename = ?)", ir.Scalar(v))
	}

	if v, ok := isSet(args, "s"); ok {
		for _, term := range strings.Fields(ir.Scalar(v)) {
			pattern := containsPattern(term)
			w.add(`(p.post_title LIKE ? ESCAPE '\' OR p.post_excerpt LIKE ? ESCAPE '\' OR p.post_content LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern)
		}
	}

	if err := groupFilter(args, w, "meta_query", metaCompiler{}); err != nil {
		return err
	}
	if err := groupFilter(args, w, "tax_query", taxCompiler{}); err != nil {
		return err
	}
	return dateFilter(args, w)
}

// inFilter matches col against a name or list of names, defaulting to
// def. The wildcard value disables the filter.
func inFilter(args *ir.Object, w *where, arg, col, def, wildcard string) error {
	v, ok := isSet(args, arg)
	if !ok {
		w.add(col+" = ?", def)
		return nil
	}
	params, err := listParams(arg, v)
	if err != nil {
		return err
	}
	for _, p := range params {
		if p == wildcard {
			return nil
		}
	}
	if len(params) == 0 {
		w.add(col+" = ?", def)
		return nil
	}
	if len(params) == 1 {
		w.add(col+" = ?", params[0])
		return nil
	}
	w.add(col+" IN ("+placeholders(len(params))+")", params...)
	return nil
}

// listFilter applies an ID list. An empty inclusion list matches
// nothing; an empty exclusion list matches everything.
func listFilter(args *ir.Object, w *where, arg, col string, negate bool) error {
	v, ok := isSet(args, arg)
	if !ok {
		return nil
	}
	params, err := listParams(arg, v)
	if err != nil {
		return err
	}
	switch {
	case len(params) == 0 && negate:
	case len(params) == 0:
		w.add("0 = 1")
	case negate:
		w.add(col+" NOT IN ("+placeholders(len(params))+")", params...)
	default:
		w.add(col+" IN ("+placeholders(len(params))+")", params...)
	}
	return nil
}

func groupFilter(args *ir.Object, w *where, arg string, lc leafCompiler) error {
	v, ok := isSet(args, arg)
	if !ok {
		return nil
	}
	group, isObj := v.(*ir.Object)
	if !isObj {
		return unsupported(arg, "expected a clause group, got %T", v)
	}
	sql, params, err := compileGroup(arg, group, lc)
	if err != nil {
		return err
	}
	w.add(sql, params...)
	return nil
}

func dateFilter(args *ir.Object, w *where) error {
	v, ok := isSet(args, "date_query")
	if !ok {
		return nil
	}

	var group *ir.Object
	switch val := v.(type) {
	case *ir.Object:
		group = val
		if (dateCompiler{}).isLeaf(val) {
			group = ir.NewObject()
			group.Push(val)
		}
	case ir.List:
		group = ir.NewObject()
		for _, elem := range val {
			group.Push(elem)
		}
	default:
		return unsupported("date_query", "expected a clause or a list of clauses, got %T", v)
	}

	sql, params, err := compileGroup("date_query", group, dateCompiler{})
	if err != nil {
		return err
	}
	w.add(sql, params...)
	return nil
}

// paging resolves LIMIT and OFFSET. A custom offset (_offset) shifts
// every page by that many rows. A plain offset replaces the page-derived
// one.
func (c *SQLCompiler) paging(args *ir.Object) (perPage, page, offset int64, err error) {
	perPage = c.DefaultPerPage
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if v, ok := isSet(args, "posts_per_page"); ok {
		n, isInt := ir.AsInt(v)
		if !isInt {
			return 0, 0, 0, unsupported("posts_per_page", "expected an integer")
		}
		switch {
		case n < 0:
			perPage = -1
		case n > 0:
			perPage = n
		}
	}
	if v, ok := isSet(args, "nopaging"); ok {
		if b, isBool := v.(ir.Bool); isBool && bool(b) {
			perPage = -1
		}
	}

	page = 1
	for _, key := range []string{"paged", "_paged"} {
		if v, ok := isSet(args, key); ok {
			if n, isInt := ir.AsInt(v); isInt && n > 1 {
				page = n
			}
			break
		}
	}

	if perPage > 0 {
		offset = (page - 1) * perPage
	}
	if v, ok := isSet(args, "_offset"); ok {
		n, isInt := ir.AsInt(v)
		if !isInt || n < 0 {
			return 0, 0, 0, unsupported("_offset", "expected a non-negative integer")
		}
		return perPage, page, n + offset, nil
	}
	if v, ok := isSet(args, "offset"); ok {
		n, isInt := ir.AsInt(v)
		if !isInt || n < 0 {
			return 0, 0, 0, unsupported("offset", "expected a non-negative integer")
		}
		offset = n
	}
	return perPage, page, offset, nil
}

// ignoredArgs lists public arguments the compiler did not use.
// Underscore-prefixed keys are builder bookkeeping.
func ignoredArgs(args *ir.Object) []string {
	var out []string
	for _, k := range args.Keys() {
		if strings.HasPrefix(k, "_") || slices.Contains(knownArgs, k) {
			continue
		}
		out = append(out, k)
	}
	return out
}
