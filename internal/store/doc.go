// Package store provides a SQLite-backed WordPress content store that
// executes built query arguments.
//
// The schema mirrors the WordPress tables the query builder targets:
//   - wp_users, wp_posts
//   - wp_postmeta: one row per value, so keys may repeat
//   - wp_terms, wp_term_taxonomy, wp_term_relationships
//
// plus query_runs, which records every executed argument object under
// its content-addressed ID (ir.ArgsID) with a hit counter.
//
// # Critical Patterns
//
// Deterministic results: every SELECT produced by querysql ends its
// ORDER BY with p.ID, and store-internal reads order by seq then ID.
//
// Logical time: query_runs ordering uses seq from the store's Clock,
// never timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
