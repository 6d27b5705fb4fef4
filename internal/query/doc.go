// Package query assembles WP_Query argument objects with a fluent Builder.
//
// A Builder collects top-level arguments (post type, authors, ordering,
// pagination) plus meta and taxonomy clauses, then BuildArgs produces the
// single argument object handed to an Executor. The builder never runs a
// query itself: Executor is the collaborator that does, and Paginator
// wraps its result with page navigation.
//
// The ambient request (the page_num parameter and the request URI used
// for page links) is passed explicitly as a Request value.
package query
