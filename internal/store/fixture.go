package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
)

// fixtureEpoch dates posts that declare no date: the n-th post of a
// fixture file is fixtureEpoch plus n days, so later posts are newer.
var fixtureEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Fixtures is the YAML seed format.
//
//	users:
//	  - login: ada
//	posts:
//	  - title: Dune
//	    type: book
//	    author: ada
//	    date: "1965-08-01"
//	    meta: {price: 9.99, format: [paperback, ebook]}
//	    terms: {genre: [science-fiction]}
type Fixtures struct {
	Users []User        `yaml:"users"`
	Posts []PostFixture `yaml:"posts"`
}

// PostFixture declares one post. Author is a user login and Parent the
// name of an earlier post in the same file.
type PostFixture struct {
	ID           int64               `yaml:"id"`
	Title        string              `yaml:"title"`
	Name         string              `yaml:"name"`
	Content      string              `yaml:"content"`
	Excerpt      string              `yaml:"excerpt"`
	Status       string              `yaml:"status"`
	Type         string              `yaml:"type"`
	Author       string              `yaml:"author"`
	Parent       string              `yaml:"parent"`
	Date         string              `yaml:"date"`
	Modified     string              `yaml:"modified"`
	MenuOrder    int64               `yaml:"menu_order"`
	CommentCount int64               `yaml:"comment_count"`
	Meta         map[string]any      `yaml:"meta"`
	Terms        map[string][]string `yaml:"terms"`
}

// SeedStats counts what Seed inserted.
type SeedStats struct {
	Users int `json:"users"`
	Posts int `json:"posts"`
	Meta  int `json:"meta"`
	Terms int `json:"terms"`
}

// ParseFixtures decodes a fixture document. Unknown fields are errors.
func ParseFixtures(data []byte) (*Fixtures, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixtures reads a fixture file and seeds it.
func (s *Store) LoadFixtures(ctx context.Context, path string) (SeedStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedStats{}, fmt.Errorf("read fixtures: %w", err)
	}
	fx, err := ParseFixtures(data)
	if err != nil {
		return SeedStats{}, fmt.Errorf("%s: %w", path, err)
	}
	return s.Seed(ctx, fx)
}

// Seed inserts fixtures in one transaction. Meta keys and taxonomies are
// applied in sorted order so meta_id and term IDs are reproducible.
func (s *Store) Seed(ctx context.Context, fx *Fixtures) (SeedStats, error) {
	var stats SeedStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	users := make(map[string]int64, len(fx.Users))
	for _, u := range fx.Users {
		id, err := insertUser(ctx, tx, u)
		if err != nil {
			return stats, fmt.Errorf("seed: %w", err)
		}
		users[u.Login] = id
		stats.Users++
	}

	posts := make(map[string]int64, len(fx.Posts))
	for i, pf := range fx.Posts {
		p, err := pf.post(i, users, posts)
		if err != nil {
			return stats, fmt.Errorf("seed: post %d: %w", i, err)
		}
		id, err := insertPost(ctx, tx, p)
		if err != nil {
			return stats, fmt.Errorf("seed: %w", err)
		}
		if p.Name == "" {
			p.Name = ir.Slug(p.Title)
		}
		posts[p.Name] = id
		stats.Posts++

		for _, key := range sortedKeys(pf.Meta) {
			values := metaStrings(pf.Meta[key])
			if err := setMeta(ctx, tx, id, key, values...); err != nil {
				return stats, fmt.Errorf("seed: %w", err)
			}
			stats.Meta += len(values)
		}

		for _, taxonomy := range sortedKeys(pf.Terms) {
			terms := make([]Term, 0, len(pf.Terms[taxonomy]))
			for _, slug := range pf.Terms[taxonomy] {
				terms = append(terms, Term{Slug: ir.Slug(slug), Name: slug})
			}
			if err := assignTerms(ctx, tx, id, taxonomy, terms...); err != nil {
				return stats, fmt.Errorf("seed: %w", err)
			}
			stats.Terms += len(terms)
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("seed: commit: %w", err)
	}
	s.logger.Info("fixtures seeded",
		"users", stats.Users,
		"posts", stats.Posts,
		"meta", stats.Meta,
		"terms", stats.Terms,
	)
	return stats, nil
}

func (pf PostFixture) post(index int, users, posts map[string]int64) (query.Post, error) {
	p := query.Post{
		ID:           pf.ID,
		Title:        pf.Title,
		Name:         pf.Name,
		Content:      pf.Content,
		Excerpt:      pf.Excerpt,
		Status:       pf.Status,
		Type:         pf.Type,
		MenuOrder:    pf.MenuOrder,
		CommentCount: pf.CommentCount,
	}

	if pf.Author != "" {
		id, ok := users[pf.Author]
		if !ok {
			return p, fmt.Errorf("unknown author %q", pf.Author)
		}
		p.Author = id
	}
	if pf.Parent != "" {
		id, ok := posts[pf.Parent]
		if !ok {
			return p, fmt.Errorf("unknown parent %q", pf.Parent)
		}
		p.Parent = id
	}

	var err error
	p.Date = fixtureEpoch.AddDate(0, 0, index)
	if pf.Date != "" {
		if p.Date, err = parseFixtureDate(pf.Date); err != nil {
			return p, err
		}
	}
	if pf.Modified != "" {
		if p.Modified, err = parseFixtureDate(pf.Modified); err != nil {
			return p, err
		}
	}
	return p, nil
}

// parseFixtureDate accepts a full post_date or a bare day.
func parseFixtureDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	return parseDate(s)
}

// metaStrings renders a YAML meta value as stored strings. Lists become
// one row per element; booleans follow PHP ("1" and "").
func metaStrings(v any) []string {
	list := ir.AsList(ir.Coerce(v))
	out := make([]string, len(list))
	for i, elem := range list {
		out[i] = ir.Scalar(elem)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
