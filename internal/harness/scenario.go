package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vanilla/internal/store"
)

// Scenario defines a query conformance scenario: specs to load, content
// to seed, and queries to run with their expected results.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE spec files declaring post types, taxonomies and
	// queries. Relative paths are resolved against the scenario file.
	Specs []string `yaml:"specs"`

	// SiteURL is the base for pagination links.
	SiteURL string `yaml:"site_url,omitempty"`

	// Fixtures is the content seeded before the first step.
	Fixtures store.Fixtures `yaml:"fixtures"`

	// Steps run in order against the same store.
	Steps []Step `yaml:"steps"`
}

// Step runs one query. Exactly one of Query, PostType or Def selects it.
type Step struct {
	// Name labels the step in traces. Defaults to the query source.
	Name string `yaml:"name,omitempty"`

	// Query is a query name declared in the specs.
	Query string `yaml:"query,omitempty"`

	// PostType starts an empty query for a declared post type.
	PostType string `yaml:"post_type,omitempty"`

	// Def is an inline query definition in CUE syntax, using the same
	// fields as a query declaration.
	Def string `yaml:"def,omitempty"`

	// Request is the request URI the query paginates against.
	// Defaults to "/".
	Request string `yaml:"request,omitempty"`

	// PageNum sets the request's page_num parameter.
	PageNum *int64 `yaml:"page_num,omitempty"`

	// PerPage paginates with this page size. Zero leaves paging to the
	// query itself.
	PerPage int64 `yaml:"per_page,omitempty"`

	// Expect lists the checks for this step. Nil means the step only
	// needs to execute without error.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected query results. Unset fields are not checked.
type Expect struct {
	// Slugs is the exact, ordered list of post names on the page.
	Slugs []string `yaml:"slugs,omitempty"`

	// Contains lists post names that must be on the page, any order.
	Contains []string `yaml:"contains,omitempty"`

	// Excludes lists post names that must not be on the page.
	Excludes []string `yaml:"excludes,omitempty"`

	// Count is the number of posts on the page.
	Count *int `yaml:"count,omitempty"`

	Found       *int64 `yaml:"found,omitempty"`
	Pages       *int64 `yaml:"pages,omitempty"`
	CurrentPage *int64 `yaml:"current_page,omitempty"`
	HasNext     *bool  `yaml:"has_next,omitempty"`
	HasPrevious *bool  `yaml:"has_previous,omitempty"`
	NextURL     string `yaml:"next_url,omitempty"`
	PreviousURL string `yaml:"previous_url,omitempty"`

	// Error is a substring the step's error must contain. When set the
	// step is expected to fail.
	Error string `yaml:"error,omitempty"`
}

// SpecNotFoundError is returned when a scenario references a spec file
// that doesn't exist.
type SpecNotFoundError struct {
	Scenario     string
	SpecPath     string
	ResolvedPath string
}

// Error implements the error interface.
func (e *SpecNotFoundError) Error() string {
	return fmt.Sprintf(
		"scenario %q references spec file %q which does not exist (resolved to: %s)",
		e.Scenario,
		e.SpecPath,
		e.ResolvedPath,
	)
}

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to basePath.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or references missing spec files.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, specPath := range scenario.Specs {
		resolved := specPath
		if !filepath.IsAbs(resolved) && basePath != "" {
			resolved = filepath.Join(basePath, resolved)
		}
		if _, err := os.Stat(resolved); os.IsNotExist(err) {
			return nil, &SpecNotFoundError{Scenario: scenario.Name, SpecPath: specPath, ResolvedPath: resolved}
		}
		scenario.Specs[i] = resolved
	}

	return scenario, nil
}

// ParseScenario decodes a scenario document. Spec paths are left as
// written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and step shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	sources := 0
	for _, s := range []string{step.Query, step.PostType, step.Def} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("steps[%d]: exactly one of query, post_type or def is required", index)
	}
	if step.PageNum != nil && *step.PageNum < 0 {
		return fmt.Errorf("steps[%d]: page_num must be non-negative", index)
	}
	if step.PerPage < 0 {
		return fmt.Errorf("steps[%d]: per_page must be non-negative", index)
	}
	if e := step.Expect; e != nil && e.Count != nil && *e.Count < 0 {
		return fmt.Errorf("steps[%d]: expect.count must be non-negative", index)
	}
	return nil
}

// label names a step in traces and error messages.
func (s Step) label(index int) string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Query != "":
		return s.Query
	case s.PostType != "":
		return "post_type:" + s.PostType
	default:
		return fmt.Sprintf("def#%d", index)
	}
}
