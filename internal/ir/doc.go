// Package ir provides the argument value model handed to the query
// collaborator.
//
// WP_Query arguments are PHP arrays: ordered maps whose keys are either
// strings or positional integers. Object reproduces that shape so that a
// flattened clause group such as
//
//	{"relation": "OR", "0": {...}, "1": {...}}
//
// keeps its member order through building, JSON encoding and SQL
// compilation.
//
// This package imports nothing internal. All other internal packages
// import ir; ir remains the foundational layer.
//
// Key design constraints:
//   - Value is sealed; only the types in this package implement it
//   - Object preserves insertion order, MarshalCanonical does not
//   - JSON tags use snake_case, matching the WordPress argument names
package ir
