package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
)

// execer is satisfied by *sql.DB and *sql.Tx, so writes can run inside
// a Seed transaction or on their own.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// User is a row of wp_users.
type User struct {
	ID          int64  `yaml:"id" json:"id"`
	Login       string `yaml:"login" json:"login"`
	Nicename    string `yaml:"nicename" json:"nicename"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

// Term names a taxonomy term. Slug defaults to the slugified name and
// Name defaults to the slug.
type Term struct {
	Name string `yaml:"name" json:"name"`
	Slug string `yaml:"slug" json:"slug"`
}

// InsertUser inserts a user and returns its ID. A zero ID is assigned by
// SQLite; an empty nicename defaults to the slugified login.
func (s *Store) InsertUser(ctx context.Context, u User) (int64, error) {
	return insertUser(ctx, s.db, u)
}

func insertUser(ctx context.Context, db execer, u User) (int64, error) {
	if u.Login == "" {
		return 0, fmt.Errorf("insert user: login is required")
	}
	if u.Nicename == "" {
		u.Nicename = ir.Slug(u.Login)
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Login
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO wp_users (ID, user_login, user_nicename, display_name)
		VALUES (NULLIF(?, 0), ?, ?, ?)
	`, u.ID, u.Login, u.Nicename, u.DisplayName)
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", u.Login, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user %q: last insert id: %w", u.Login, err)
	}
	return id, nil
}

// InsertPost inserts a post and returns its ID.
//
// Defaults: type "post", status "publish", name from the title, modified
// equal to date, and a urn:uuid GUID.
func (s *Store) InsertPost(ctx context.Context, p query.Post) (int64, error) {
	return insertPost(ctx, s.db, p)
}

func insertPost(ctx context.Context, db execer, p query.Post) (int64, error) {
	if p.Type == "" {
		p.Type = "post"
	}
	if p.Status == "" {
		p.Status = "publish"
	}
	if p.Name == "" {
		p.Name = ir.Slug(p.Title)
	}
	if p.Modified.IsZero() {
		p.Modified = p.Date
	}
	if p.GUID == "" {
		p.GUID = "urn:uuid:" + uuid.NewString()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO wp_posts
		(ID, post_author, post_date, post_modified, post_title, post_name, post_content,
		 post_excerpt, post_status, post_type, post_parent, menu_order, guid, comment_count)
		VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Author,
		formatDate(p.Date),
		formatDate(p.Modified),
		p.Title,
		p.Name,
		p.Content,
		p.Excerpt,
		p.Status,
		p.Type,
		p.Parent,
		p.MenuOrder,
		p.GUID,
		p.CommentCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post %q: %w", p.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert post %q: last insert id: %w", p.Name, err)
	}
	return id, nil
}

// SetMeta appends values under key. Keys are multi-valued: calling
// SetMeta twice keeps both sets of rows.
func (s *Store) SetMeta(ctx context.Context, postID int64, key string, values ...string) error {
	return setMeta(ctx, s.db, postID, key, values...)
}

func setMeta(ctx context.Context, db execer, postID int64, key string, values ...string) error {
	if key == "" {
		return fmt.Errorf("set meta on post %d: key is required", postID)
	}
	for _, v := range values {
		_, err := db.ExecContext(ctx, `
			INSERT INTO wp_postmeta (post_id, meta_key, meta_value)
			VALUES (?, ?, ?)
		`, postID, key, v)
		if err != nil {
			return fmt.Errorf("set meta %q on post %d: %w", key, postID, err)
		}
	}
	return nil
}

// AssignTerms attaches terms of taxonomy to a post, creating missing
// terms by slug. Assigning a term twice is a no-op.
func (s *Store) AssignTerms(ctx context.Context, postID int64, taxonomy string, terms ...Term) error {
	return assignTerms(ctx, s.db, postID, taxonomy, terms...)
}

func assignTerms(ctx context.Context, db execer, postID int64, taxonomy string, terms ...Term) error {
	if taxonomy == "" {
		return fmt.Errorf("assign terms to post %d: taxonomy is required", postID)
	}
	for i, term := range terms {
		ttID, err := ensureTerm(ctx, db, taxonomy, term)
		if err != nil {
			return fmt.Errorf("assign terms to post %d: %w", postID, err)
		}

		result, err := db.ExecContext(ctx, `
			INSERT INTO wp_term_relationships (object_id, term_taxonomy_id, term_order)
			VALUES (?, ?, ?)
			ON CONFLICT(object_id, term_taxonomy_id) DO NOTHING
		`, postID, ttID, i)
		if err != nil {
			return fmt.Errorf("assign terms to post %d: %w", postID, err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("assign terms to post %d: rows affected: %w", postID, err)
		}
		if inserted == 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, `
			UPDATE wp_term_taxonomy SET count = count + 1 WHERE term_taxonomy_id = ?
		`, ttID); err != nil {
			return fmt.Errorf("assign terms to post %d: update count: %w", postID, err)
		}
	}
	return nil
}

// ensureTerm returns the term_taxonomy_id for the term, creating it when
// the taxonomy has no term with that slug.
func ensureTerm(ctx context.Context, db execer, taxonomy string, term Term) (int64, error) {
	slug := term.Slug
	if slug == "" {
		slug = ir.Slug(term.Name)
	}
	if slug == "" {
		return 0, fmt.Errorf("term in %q needs a name or slug", taxonomy)
	}
	name := strings.TrimSpace(term.Name)
	if name == "" {
		name = slug
	}

	var ttID int64
	err := db.QueryRowContext(ctx, `
		SELECT tt.term_taxonomy_id
		FROM wp_term_taxonomy tt
		JOIN wp_terms t ON t.term_id = tt.term_id
		WHERE tt.taxonomy = ? AND t.slug = ?
	`, taxonomy, slug).Scan(&ttID)
	if err == nil {
		return ttID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find term %q: %w", slug, err)
	}

	result, err := db.ExecContext(ctx, `INSERT INTO wp_terms (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		return 0, fmt.Errorf("insert term %q: %w", slug, err)
	}
	termID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert term %q: last insert id: %w", slug, err)
	}

	result, err = db.ExecContext(ctx, `
		INSERT INTO wp_term_taxonomy (term_id, taxonomy) VALUES (?, ?)
	`, termID, taxonomy)
	if err != nil {
		return 0, fmt.Errorf("insert term %q into %q: %w", slug, taxonomy, err)
	}
	ttID, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert term %q into %q: last insert id: %w", slug, taxonomy, err)
	}
	return ttID, nil
}
