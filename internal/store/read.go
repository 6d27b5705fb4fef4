package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
	"github.com/roach88/vanilla/internal/querysql"
)

// QueryRun is a row of query_runs.
type QueryRun struct {
	ArgsID    string     `json:"args_id"`
	Args      *ir.Object `json:"args"`
	Hits      int64      `json:"hits"`
	FirstSeq  int64      `json:"first_seq"`
	LastSeq   int64      `json:"last_seq"`
	LastFound int64      `json:"last_found"`
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Execute compiles args to SQL, runs the page and count queries, and
// records the run. It implements query.Executor.
//
// Unsupported argument shapes fail with *querysql.UnsupportedError.
// Arguments the compiler does not understand are logged and ignored.
func (s *Store) Execute(ctx context.Context, args *ir.Object) (*query.Result, error) {
	compiled, err := s.compiler.Compile(args)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	if len(compiled.Ignored) > 0 {
		s.logger.Warn("ignoring unsupported query args", "args", compiled.Ignored)
	}

	var found int64
	if err := s.db.QueryRowContext(ctx, compiled.CountSQL, compiled.CountParams...).Scan(&found); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	posts, err := s.selectPosts(ctx, compiled.SQL, compiled.Params...)
	if err != nil {
		return nil, err
	}

	result := &query.Result{
		Posts:       posts,
		FoundPosts:  found,
		MaxNumPages: maxNumPages(found, compiled.PerPage),
	}

	if err := s.recordRun(ctx, args, found); err != nil {
		return nil, err
	}

	s.logger.Debug("query executed",
		"found", found,
		"page", compiled.Page,
		"per_page", compiled.PerPage,
		"returned", len(posts),
	)
	return result, nil
}

// maxNumPages follows WP_Query: unlimited queries report no pages.
func maxNumPages(found, perPage int64) int64 {
	if perPage <= 0 {
		return 0
	}
	return (found + perPage - 1) / perPage
}

func (s *Store) selectPosts(ctx context.Context, sqlText string, params ...any) ([]query.Post, error) {
	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []query.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	// Return empty slice instead of nil
	if posts == nil {
		posts = []query.Post{}
	}
	return posts, nil
}

// recordRun upserts the run under its content-addressed ID.
func (s *Store) recordRun(ctx context.Context, args *ir.Object, found int64) error {
	argsID, err := query.ArgsID(args)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	argsJSON, err := marshalArgs(args)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	seq := s.clock.Next()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_runs (args_id, args, hits, first_seq, last_seq, last_found)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(args_id) DO UPDATE SET
			hits = hits + 1,
			last_seq = excluded.last_seq,
			last_found = excluded.last_found
	`, argsID, argsJSON, seq, seq, found)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Post retrieves a single post by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) Post(ctx context.Context, id int64) (query.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+querysql.PostColumns+`
		FROM wp_posts p
		WHERE p.ID = ?
	`, id)
	p, err := scanPost(row)
	if err != nil {
		return query.Post{}, fmt.Errorf("read post %d: %w", id, err)
	}
	return p, nil
}

// Meta returns every meta value of a post, grouped by key, in insertion
// order within each key.
func (s *Store) Meta(ctx context.Context, postID int64) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meta_key, meta_value
		FROM wp_postmeta
		WHERE post_id = ?
		ORDER BY meta_id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string][]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[key] = append(meta[key], value.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meta: %w", err)
	}
	return meta, nil
}

// Terms returns the slugs of a post's terms in a taxonomy, ordered by
// assignment.
func (s *Store) Terms(ctx context.Context, postID int64, taxonomy string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.slug
		FROM wp_term_relationships tr
		JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		JOIN wp_terms t ON t.term_id = tt.term_id
		WHERE tr.object_id = ? AND tt.taxonomy = ?
		ORDER BY tr.term_order ASC, t.term_id ASC
	`, postID, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terms: %w", err)
	}
	return slugs, nil
}

// Runs returns every recorded query run.
// Results are ordered deterministically: ORDER BY last_seq ASC, args_id ASC COLLATE BINARY.
func (s *Store) Runs(ctx context.Context) ([]QueryRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT args_id, args, hits, first_seq, last_seq, last_found
		FROM query_runs
		ORDER BY last_seq ASC, args_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []QueryRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Run retrieves one recorded run by its args ID.
// Returns an error wrapping sql.ErrNoRows if the args never ran.
func (s *Store) Run(ctx context.Context, argsID string) (QueryRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT args_id, args, hits, first_seq, last_seq, last_found
		FROM query_runs
		WHERE args_id = ?
	`, argsID)
	run, err := scanRun(row)
	if err != nil {
		return QueryRun{}, fmt.Errorf("read run %s: %w", argsID, err)
	}
	return run, nil
}

func scanPost(row rowScanner) (query.Post, error) {
	var p query.Post
	var date, modified string
	err := row.Scan(
		&p.ID,
		&p.Author,
		&date,
		&modified,
		&p.Title,
		&p.Name,
		&p.Content,
		&p.Excerpt,
		&p.Status,
		&p.Type,
		&p.Parent,
		&p.MenuOrder,
		&p.GUID,
		&p.CommentCount,
	)
	if err != nil {
		return query.Post{}, fmt.Errorf("scan post: %w", err)
	}
	if p.Date, err = parseDate(date); err != nil {
		return query.Post{}, fmt.Errorf("scan post %d: %w", p.ID, err)
	}
	if p.Modified, err = parseDate(modified); err != nil {
		return query.Post{}, fmt.Errorf("scan post %d: %w", p.ID, err)
	}
	return p, nil
}

func scanRun(row rowScanner) (QueryRun, error) {
	var run QueryRun
	var argsJSON string
	if err := row.Scan(&run.ArgsID, &argsJSON, &run.Hits, &run.FirstSeq, &run.LastSeq, &run.LastFound); err != nil {
		return QueryRun{}, fmt.Errorf("scan run: %w", err)
	}
	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return QueryRun{}, fmt.Errorf("scan run %s: %w", run.ArgsID, err)
	}
	run.Args = args
	return run, nil
}
