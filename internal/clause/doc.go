// Package clause builds WordPress meta_query and tax_query clause groups.
//
// Filter declarations accumulate in order as {relation, body} pairs and
// are flattened into the nested array grammar WP_Query consumes:
//
//	{"relation": "OR", "0": leaf, "1": leaf, "2": {"relation": "AND", ...}}
//
// FLATTENING:
//
// Flatten is a shallow, one-level partition of the accumulated clauses by
// relation, not boolean normalization:
//
//	no OR clauses           {relation: AND, ...and}
//	OR clauses, no AND      {relation: OR, ...or}
//	OR clauses, one AND     {relation: OR, ...or, and}        (folded)
//	OR clauses, many AND    {relation: OR, ...or, {relation: AND, ...and}}
//
// A single AND clause is folded into the OR set. That changes the boolean
// meaning (a OR b AND c reads as a OR b OR c) but it is the behavior
// existing consumers depend on, so it is kept.
//
// Nested groups come from Nested: the callback fills a fresh accumulator
// whose flattened output becomes one Group body.
//
// SEALED INTERFACES:
//
// Body is sealed with a marker method. Only MetaLeaf, TaxLeaf, Raw and
// Group implement it, so renderers can switch exhaustively.
//
// VALIDATION:
//
// Builders never validate. Operators are uppercased and passed through;
// the query engine rejects what it cannot run. Lint offers an optional,
// non-blocking report of shapes WP_Query is known not to accept.
package clause
