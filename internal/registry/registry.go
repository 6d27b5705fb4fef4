// Package registry maps post type, taxonomy and query names to their
// definitions. Definitions are registered explicitly at startup, usually
// from compiled CUE specs, and the registry is passed to whatever needs to
// construct queries.
package registry

import (
	"fmt"
	"sync"

	"github.com/roach88/vanilla/internal/compiler"
	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
)

// Registry holds registered definitions in registration order.
type Registry struct {
	mu sync.RWMutex

	// builderOpts are applied to every Builder the registry creates.
	builderOpts []query.Option

	postTypes  map[string]ir.PostTypeDef
	taxonomies map[string]ir.TaxonomyDef
	queries    map[string]ir.QueryDef

	// order of registration, per kind
	typeOrder  []string
	taxOrder   []string
	queryOrder []string
}

// New creates an empty registry. opts configure the builders returned
// by Query and NewQuery.
func New(opts ...query.Option) *Registry {
	return &Registry{
		builderOpts: opts,
		postTypes:   make(map[string]ir.PostTypeDef),
		taxonomies:  make(map[string]ir.TaxonomyDef),
		queries:     make(map[string]ir.QueryDef),
	}
}

// RegisterPostType adds a post type. Registering a name twice is an error.
func (r *Registry) RegisterPostType(def ir.PostTypeDef) error {
	if def.Name == "" {
		return fmt.Errorf("post type name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.postTypes[def.Name]; ok {
		return fmt.Errorf("duplicate post type: %s", def.Name)
	}
	r.postTypes[def.Name] = def
	r.typeOrder = append(r.typeOrder, def.Name)
	return nil
}

// RegisterTaxonomy adds a taxonomy. Registering a name twice is an error.
func (r *Registry) RegisterTaxonomy(def ir.TaxonomyDef) error {
	if def.Name == "" {
		return fmt.Errorf("taxonomy name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.taxonomies[def.Name]; ok {
		return fmt.Errorf("duplicate taxonomy: %s", def.Name)
	}
	r.taxonomies[def.Name] = def
	r.taxOrder = append(r.taxOrder, def.Name)
	return nil
}

// RegisterQuery adds a named query definition. Registering a name twice
// is an error.
func (r *Registry) RegisterQuery(def ir.QueryDef) error {
	if def.Name == "" {
		return fmt.Errorf("query name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.queries[def.Name]; ok {
		return fmt.Errorf("duplicate query: %s", def.Name)
	}
	r.queries[def.Name] = def
	r.queryOrder = append(r.queryOrder, def.Name)
	return nil
}

// PostType returns the post type registered under name.
func (r *Registry) PostType(name string) (ir.PostTypeDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.postTypes[name]
	return def, ok
}

// Taxonomy returns the taxonomy registered under name.
func (r *Registry) Taxonomy(name string) (ir.TaxonomyDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.taxonomies[name]
	return def, ok
}

// QueryDef returns the query definition registered under name.
func (r *Registry) QueryDef(name string) (ir.QueryDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.queries[name]
	return def, ok
}

// PostTypes returns all post types in registration order.
func (r *Registry) PostTypes() []ir.PostTypeDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ir.PostTypeDef, 0, len(r.typeOrder))
	for _, name := range r.typeOrder {
		out = append(out, r.postTypes[name])
	}
	return out
}

// Taxonomies returns all taxonomies in registration order.
func (r *Registry) Taxonomies() []ir.TaxonomyDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ir.TaxonomyDef, 0, len(r.taxOrder))
	for _, name := range r.taxOrder {
		out = append(out, r.taxonomies[name])
	}
	return out
}

// Queries returns all query definitions in registration order.
func (r *Registry) Queries() []ir.QueryDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ir.QueryDef, 0, len(r.queryOrder))
	for _, name := range r.queryOrder {
		out = append(out, r.queries[name])
	}
	return out
}

// TaxonomiesFor returns the taxonomies attached to a post type, from
// either side of the relation, in taxonomy registration order followed by
// any names only the post type declares.
func (r *Registry) TaxonomiesFor(postType string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, name := range r.taxOrder {
		for _, pt := range r.taxonomies[name].PostTypes {
			if pt == postType && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	for _, name := range r.postTypes[postType].Taxonomies {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Query builds the named query. The returned Builder is fresh on every
// call and can be refined further before execution.
func (r *Registry) Query(name string, opts ...query.Option) (*query.Builder, error) {
	def, ok := r.QueryDef(name)
	if !ok {
		return nil, fmt.Errorf("unknown query: %s", name)
	}
	return query.FromDef(def, r.options(opts)...)
}

// NewQuery returns a Builder scoped to a registered post type, with its
// per_page applied when the type declares one.
func (r *Registry) NewQuery(postType string, opts ...query.Option) (*query.Builder, error) {
	def, ok := r.PostType(postType)
	if !ok {
		return nil, fmt.Errorf("unknown post type: %s", postType)
	}
	b := query.New(r.options(opts)...).Type(def.Name)
	if def.PerPage != 0 {
		b.PerPage(def.PerPage)
	}
	return b, nil
}

func (r *Registry) options(extra []query.Option) []query.Option {
	opts := make([]query.Option, 0, len(r.builderOpts)+len(extra))
	opts = append(opts, r.builderOpts...)
	return append(opts, extra...)
}

// Validate runs cross-reference validation over everything registered.
func (r *Registry) Validate() []compiler.ValidationError {
	return compiler.ValidateRefs(r.PostTypes(), r.Taxonomies(), r.Queries())
}

// FromSpecs creates a registry holding every definition in set.
func FromSpecs(set *compiler.SpecSet, opts ...query.Option) (*Registry, error) {
	r := New(opts...)
	for _, def := range set.PostTypes {
		if err := r.RegisterPostType(def); err != nil {
			return nil, err
		}
	}
	for _, def := range set.Taxonomies {
		if err := r.RegisterTaxonomy(def); err != nil {
			return nil, err
		}
	}
	for _, def := range set.Queries {
		if err := r.RegisterQuery(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
