package query

import (
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// Paginator wraps one executed page with navigation helpers.
type Paginator struct {
	args    *ir.Object
	result  *Result
	request Request
	siteURL string
}

// NewPaginator wraps result, produced by executing args for req.
func NewPaginator(args *ir.Object, result *Result, req Request) *Paginator {
	if result == nil {
		result = &Result{}
	}
	return &Paginator{args: args, result: result, request: req}
}

// WithSiteURL sets the base URL page links are built on.
func (p *Paginator) WithSiteURL(siteURL string) *Paginator {
	p.siteURL = siteURL
	return p
}

// Args returns the arguments that were executed for this page.
func (p *Paginator) Args() *ir.Object {
	return p.args
}

// Items returns the posts on this page.
func (p *Paginator) Items() []Post {
	return p.result.Posts
}

// Found returns the number of matches across all pages.
func (p *Paginator) Found() int64 {
	return p.result.FoundPosts
}

// CurrentPage returns the page number, never less than 1.
func (p *Paginator) CurrentPage() int64 {
	page := int64(1)
	if v, ok := p.args.Get("paged"); ok {
		if n, ok := ir.AsInt(v); ok {
			page = n
		}
	}
	return max(page, 1)
}

// Pages returns the total number of pages.
func (p *Paginator) Pages() int64 {
	return p.result.MaxNumPages
}

// HasNextPage reports whether a later page exists.
func (p *Paginator) HasNextPage() bool {
	return p.CurrentPage() < p.Pages()
}

// NextPageURL links to the next page. ok is false on the last page.
func (p *Paginator) NextPageURL() (link string, ok bool) {
	if !p.HasNextPage() {
		return "", false
	}
	return p.LinkToPage(p.CurrentPage() + 1), true
}

// HasPreviousPage reports whether an earlier page exists.
func (p *Paginator) HasPreviousPage() bool {
	return p.CurrentPage() > 1
}

// PreviousPageURL links to the previous page. ok is false on page 1.
func (p *Paginator) PreviousPageURL() (link string, ok bool) {
	if !p.HasPreviousPage() {
		return "", false
	}
	return p.LinkToPage(p.CurrentPage() - 1), true
}

// LinkToPage builds the URL of page: the site URL joined with the
// current request URI, its page_num replaced. Page 1 and below carry no
// page_num at all.
func (p *Paginator) LinkToPage(page int64) string {
	request := p.request.withPage(page)
	base := strings.TrimRight(p.siteURL, `/\`) + "/"
	return base + strings.TrimLeft(request, "/")
}
