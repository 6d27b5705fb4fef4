package ir

// QueryDef is a declarative, named query compiled from CUE.
// Unset optional fields are nil so that replaying the definition through
// the builder only touches what was declared.
type QueryDef struct {
	Name         string      `json:"name"`
	PostType     Value       `json:"post_type,omitempty"`
	Status       []string    `json:"post_status,omitempty"`
	Author       Value       `json:"author,omitempty"`
	AuthorNot    Value       `json:"author_not,omitempty"`
	Post         Value       `json:"post,omitempty"`
	PostNot      Value       `json:"post_not,omitempty"`
	Parent       Value       `json:"parent,omitempty"`
	Slug         string      `json:"name_slug,omitempty"`
	Search       string      `json:"search,omitempty"`
	OrderBy      Value       `json:"order_by,omitempty"`
	Order        string      `json:"order,omitempty"`
	PerPage      *int64      `json:"per_page,omitempty"`
	Page         *int64      `json:"page,omitempty"`
	Offset       *int64      `json:"offset,omitempty"`
	IgnoreSticky bool        `json:"ignore_sticky_posts,omitempty"`
	Date         Value       `json:"date_query,omitempty"`
	Meta         []ClauseDef `json:"meta,omitempty"`
	Tax          []ClauseDef `json:"tax,omitempty"`
	Set          *Object     `json:"set,omitempty"`
}

// ClauseDef declares one meta or taxonomy clause.
//
// Exactly one form applies, checked in this order:
//   - Group: nested clauses flattened into a sub-group
//   - Raw: a verbatim clause object
//   - Field (+ Compare, Value, Type): a comparison leaf; Compare empty
//     selects the short form where the operator is inferred from Value
type ClauseDef struct {
	Relation string      `json:"relation,omitempty"` // "AND" (default) or "OR"
	Field    string      `json:"field,omitempty"`    // meta key or taxonomy name
	Compare  string      `json:"compare,omitempty"`
	Value    Value       `json:"value,omitempty"`
	Type     string      `json:"type,omitempty"` // meta only
	Raw      *Object     `json:"raw,omitempty"`
	Group    []ClauseDef `json:"group,omitempty"`
}

// PostTypeDef declares a post type and its display names.
type PostTypeDef struct {
	Name       string   `json:"name"`
	Singular   string   `json:"singular"`
	Plural     string   `json:"plural"`
	Slug       string   `json:"slug"`
	PerPage    int64    `json:"per_page,omitempty"`
	Taxonomies []string `json:"taxonomies,omitempty"`
}

// TaxonomyDef declares a taxonomy and the post types it applies to.
type TaxonomyDef struct {
	Name      string   `json:"name"`
	Singular  string   `json:"singular"`
	Plural    string   `json:"plural"`
	Slug      string   `json:"slug"`
	PostTypes []string `json:"post_types,omitempty"`
}
