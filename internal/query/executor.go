package query

import (
	"context"
	"time"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
)

// Executor runs a built argument object. It is the query engine the
// builder hands off to; it owns rejection of invalid clause shapes.
type Executor interface {
	Execute(ctx context.Context, args *ir.Object) (*Result, error)
}

// Result is one page of matching posts plus the totals WP_Query reports.
type Result struct {
	Posts       []Post
	FoundPosts  int64 // matches across all pages
	MaxNumPages int64
}

// Post is a row of wp_posts.
type Post struct {
	ID           int64     `json:"id"`
	Author       int64     `json:"author"`
	Date         time.Time `json:"date"`
	Modified     time.Time `json:"modified"`
	Title        string    `json:"title"`
	Name         string    `json:"name"`
	Content      string    `json:"content,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	Parent       int64     `json:"parent"`
	MenuOrder    int64     `json:"menu_order"`
	GUID         string    `json:"guid"`
	CommentCount int64     `json:"comment_count"`
}

// ArgsID identifies args by content, ignoring the random suffixes Name
// gives repeated meta keys. Every execution of one query gets the same ID.
func ArgsID(args *ir.Object) (string, error) {
	mq, _ := args.Get("meta_query")
	group, isObject := mq.(*ir.Object)
	if !isObject || group == nil {
		return ir.ArgsID(args)
	}
	norm := args.Clone()
	norm.Set("meta_query", clause.Unname(group))
	return ir.ArgsID(norm)
}
