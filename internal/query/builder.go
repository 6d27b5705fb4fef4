package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
)

const (
	// DefaultPerPage is the WordPress posts_per_page option default.
	DefaultPerPage int64 = 10

	// unpagedPerPage is used when no page size was chosen.
	unpagedPerPage int64 = 9999
)

// Builder assembles WP_Query arguments.
//
// Setters return the receiver so calls chain. A Builder serves one query
// construction and is not safe for concurrent use.
type Builder struct {
	args           *ir.Object
	meta           *clause.Meta
	tax            *clause.Tax
	defaultPerPage int64
	siteURL        string
}

// Option configures a Builder.
type Option func(*Builder)

// WithTokens sets the token source used to de-duplicate meta keys.
func WithTokens(tokens clause.TokenSource) Option {
	return func(b *Builder) { b.meta = clause.NewMeta(tokens) }
}

// WithDefaultPerPage sets the page size Paginate falls back to.
func WithDefaultPerPage(n int64) Option {
	return func(b *Builder) {
		if n > 0 {
			b.defaultPerPage = n
		}
	}
}

// WithSiteURL sets the base URL for pagination links.
func WithSiteURL(siteURL string) Option {
	return func(b *Builder) { b.siteURL = siteURL }
}

// New creates an empty Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		args:           ir.NewObject(),
		meta:           clause.NewMeta(nil),
		tax:            clause.NewTax(),
		defaultPerPage: DefaultPerPage,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Set stores a raw argument.
func (b *Builder) Set(key string, value any) *Builder {
	b.args.Set(key, ir.Coerce(value))
	return b
}

// SetMany merges args into the arguments; existing keys are overwritten.
func (b *Builder) SetMany(args *ir.Object) *Builder {
	b.args = ir.Merge(b.args, args)
	return b
}

// Args returns a copy of the arguments set so far, without clauses.
func (b *Builder) Args() *ir.Object {
	return b.args.Clone()
}

// Author filters by author: a string is an author_name, anything else
// one or more author IDs.
func (b *Builder) Author(author any) *Builder {
	v := ir.Coerce(author)
	if s, ok := v.(ir.String); ok {
		return b.Set("author_name", s)
	}
	return b.Set("author__in", ir.AsList(v))
}

// AuthorNot excludes one or more author IDs.
func (b *Builder) AuthorNot(author any) *Builder {
	return b.Set("author__not_in", ir.AsList(ir.Coerce(author)))
}

// Post restricts results to one or more post IDs.
func (b *Builder) Post(post any) *Builder {
	return b.Set("post__in", ir.AsList(ir.Coerce(post)))
}

// PostNot excludes one or more post IDs.
func (b *Builder) PostNot(post any) *Builder {
	return b.Set("post__not_in", ir.AsList(ir.Coerce(post)))
}

// Type sets post_type: a name or a list of names.
func (b *Builder) Type(postType any) *Builder {
	return b.Set("post_type", postType)
}

// Parent filters by parent post. The integer 0 selects top-level posts;
// anything else is one or more parent IDs.
func (b *Builder) Parent(parent any) *Builder {
	v := ir.Coerce(parent)
	if n, ok := v.(ir.Int); ok && n == 0 {
		return b.Set("post_parent", ir.Int(0))
	}
	return b.Set("post_parent__in", ir.AsList(v))
}

// ParentIn restricts results to children of the given parents.
func (b *Builder) ParentIn(parents any) *Builder {
	return b.Parent(ir.AsList(ir.Coerce(parents)))
}

// NoParent restricts results to top-level posts.
func (b *Builder) NoParent() *Builder {
	return b.Parent(0)
}

// Slug selects a post by its name.
func (b *Builder) Slug(slug string) *Builder {
	return b.Set("name", slug)
}

// Status sets one or more post statuses.
func (b *Builder) Status(status any) *Builder {
	return b.Set("post_status", ir.AsList(ir.Coerce(status)))
}

// Search sets the keyword search.
func (b *Builder) Search(keyword string) *Builder {
	return b.Set("s", keyword)
}

// OrderBy orders by space-separated fields, each in the given direction
// (DESC when omitted). "none" and "rand" pass through unchanged.
func (b *Builder) OrderBy(fields string, order ...string) *Builder {
	switch strings.ToUpper(fields) {
	case "NONE", "RAND":
		return b.Set("orderby", fields)
	}

	direction := "DESC"
	if len(order) > 0 && order[0] != "" {
		direction = order[0]
	}
	orderby := ir.NewObject()
	for _, field := range strings.Split(fields, " ") {
		orderby.Set(field, ir.String(direction))
	}
	return b.Set("orderby", orderby)
}

// OrderByMap sets orderby to a field => direction object as given.
func (b *Builder) OrderByMap(orderby *ir.Object) *Builder {
	return b.Set("orderby", orderby)
}

// IgnoreStickyPosts stops sticky posts from being moved to the front.
func (b *Builder) IgnoreStickyPosts() *Builder {
	return b.Set("ignore_sticky_posts", true)
}

// PerPage sets the page size.
func (b *Builder) PerPage(n int64) *Builder {
	return b.Set("posts_per_page", n)
}

// Page sets the page number. It overrides the request's page_num and
// only matters once a page size is set.
func (b *Builder) Page(n int64) *Builder {
	b.Set("_paged", n)
	return b.Set("paged", n)
}

// Offset skips n posts.
func (b *Builder) Offset(n int64) *Builder {
	b.Set("offset", n)
	return b.Set("_offset", n)
}

// DateRaw sets date_query verbatim.
func (b *Builder) DateRaw(query any) *Builder {
	return b.Set("date_query", query)
}

// MetaQuery exposes the meta clause accumulator.
func (b *Builder) MetaQuery() *clause.Meta { return b.meta }

// TaxQuery exposes the taxonomy clause accumulator.
func (b *Builder) TaxQuery() *clause.Tax { return b.tax }

// BuildArgs returns the complete argument object. The builder itself is
// not modified, so BuildArgs may be called repeatedly.
//
//   - meta_query and tax_query are set when they have clauses
//   - the request's page_num applies unless Page was called
//   - without a page size, the first 9999 posts are returned
func (b *Builder) BuildArgs(req Request) *ir.Object {
	args := b.args.Clone()

	if meta := b.meta.Build(); meta.Len() > 0 {
		args.Set("meta_query", meta)
	}
	if tax := b.tax.Build(); tax.Len() > 0 {
		args.Set("tax_query", tax)
	}

	if !isSet(args, "_paged") {
		if page, ok := req.PageNum(); ok {
			setPage(args, page)
		}
	}

	if !isSet(args, "posts_per_page") {
		setPage(args, 1)
		args.Set("posts_per_page", ir.Int(unpagedPerPage))
	}

	return args
}

// Get executes the query and returns the matching posts.
func (b *Builder) Get(ctx context.Context, exec Executor, req Request) ([]Post, error) {
	_, result, err := b.execute(ctx, exec, req)
	if err != nil {
		return nil, err
	}
	return result.Posts, nil
}

// Paginate sets the page size and executes the query. perPage <= 0 uses
// the default page size.
func (b *Builder) Paginate(ctx context.Context, exec Executor, req Request, perPage int64) (*Paginator, error) {
	if perPage <= 0 {
		perPage = b.defaultPerPage
	}
	b.PerPage(perPage)
	return b.Paginator(ctx, exec, req)
}

// Paginator executes the query as configured and wraps the result.
func (b *Builder) Paginator(ctx context.Context, exec Executor, req Request) (*Paginator, error) {
	args, result, err := b.execute(ctx, exec, req)
	if err != nil {
		return nil, err
	}
	return NewPaginator(args, result, req).WithSiteURL(b.siteURL), nil
}

func (b *Builder) execute(ctx context.Context, exec Executor, req Request) (*ir.Object, *Result, error) {
	args := b.BuildArgs(req)
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		data, _ := ir.Marshal(args)
		slog.Debug("executing query", "args", string(data))
	}

	result, err := exec.Execute(ctx, args)
	if err != nil {
		return nil, nil, fmt.Errorf("execute query: %w", err)
	}
	return args, result, nil
}

func setPage(args *ir.Object, page int64) {
	args.Set("_paged", ir.Int(page))
	args.Set("paged", ir.Int(page))
}

// isSet reports whether key is present and not null.
func isSet(args *ir.Object, key string) bool {
	v, ok := args.Get(key)
	if !ok {
		return false
	}
	_, isNull := v.(ir.Null)
	return !isNull
}
