// Package harness runs query conformance scenarios.
//
// A scenario loads CUE specs, seeds a fresh in-memory store with fixture
// content, and runs a list of query steps, checking each page of results.
//
// # Scenario Format
//
//	name: bookshop
//	description: "What this scenario validates"
//	specs:
//	  - ../specs/bookshop.cue
//	site_url: https://shop.example
//	fixtures:
//	  users:
//	    - login: ada
//	  posts:
//	    - title: Dune
//	      type: book
//	      meta: {price: 12.5}
//	      terms: {genre: [science-fiction]}
//	steps:
//	  - query: cheap_books          # a query declared in the specs
//	    page_num: 2
//	    per_page: 10
//	    expect:
//	      slugs: [emma, persuasion]
//	      found: 12
//	      has_next: false
//	  - post_type: book             # an empty query for a declared type
//	  - def: 'search: "dune"'       # an inline CUE query definition
//	    expect:
//	      error: "unknown field"
//
// # Expect Checks
//
//   - slugs: exact ordered post names on the page
//   - contains / excludes: post names present or absent, any order
//   - count, found, pages, current_page: page and total counts
//   - has_next, has_previous, next_url, previous_url: pagination
//   - error: the step must fail with an error containing this text
//
// # Deterministic Testing
//
// Each run uses a deterministic logical clock for query_runs and fixed
// meta key suffixes, so traces are identical across runs and can be
// compared against golden files with RunWithGolden.
package harness
