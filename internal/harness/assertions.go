package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an expect check fails.
// It includes the step trace to help debug the failure.
type AssertionError struct {
	Check    string    // which expect field failed
	Expected string    // human-readable expected outcome
	Actual   string    // human-readable actual outcome
	Trace    StepTrace // the step that failed
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: step %d (%s): %s\n", e.Trace.Step, e.Trace.Label, e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Trace.Error != "" {
		fmt.Fprintf(&buf, "  Error: %s\n", e.Trace.Error)
	} else {
		fmt.Fprintf(&buf, "  Page: %v (found %d, page %d of %d)\n",
			e.Trace.Slugs, e.Trace.Found, e.Trace.CurrentPage, e.Trace.Pages)
	}

	return buf.String()
}

// checkExpect evaluates every set field of expect against trace.
// All failures are returned, not just the first.
func checkExpect(trace StepTrace, expect *Expect) []error {
	if expect == nil {
		if trace.Error != "" {
			return []error{fail("error", "no error", trace.Error, trace)}
		}
		return nil
	}

	if expect.Error != "" {
		if trace.Error == "" {
			return []error{fail("error", fmt.Sprintf("error containing %q", expect.Error), "no error", trace)}
		}
		if !strings.Contains(trace.Error, expect.Error) {
			return []error{fail("error", fmt.Sprintf("error containing %q", expect.Error), trace.Error, trace)}
		}
		return nil
	}
	if trace.Error != "" {
		return []error{fail("error", "no error", trace.Error, trace)}
	}

	var errs []error
	if expect.Slugs != nil && !slices.Equal(expect.Slugs, trace.Slugs) {
		errs = append(errs, fail("slugs", fmt.Sprintf("%v", expect.Slugs), fmt.Sprintf("%v", trace.Slugs), trace))
	}
	for _, slug := range expect.Contains {
		if !slices.Contains(trace.Slugs, slug) {
			errs = append(errs, fail("contains", fmt.Sprintf("page contains %q", slug), fmt.Sprintf("%v", trace.Slugs), trace))
		}
	}
	for _, slug := range expect.Excludes {
		if slices.Contains(trace.Slugs, slug) {
			errs = append(errs, fail("excludes", fmt.Sprintf("page excludes %q", slug), fmt.Sprintf("%v", trace.Slugs), trace))
		}
	}
	if expect.Count != nil && *expect.Count != len(trace.Slugs) {
		errs = append(errs, fail("count", fmt.Sprintf("%d posts", *expect.Count), fmt.Sprintf("%d posts", len(trace.Slugs)), trace))
	}
	if err := checkInt("found", expect.Found, trace.Found, trace); err != nil {
		errs = append(errs, err)
	}
	if err := checkInt("pages", expect.Pages, trace.Pages, trace); err != nil {
		errs = append(errs, err)
	}
	if err := checkInt("current_page", expect.CurrentPage, trace.CurrentPage, trace); err != nil {
		errs = append(errs, err)
	}
	if err := checkBool("has_next", expect.HasNext, trace.HasNext, trace); err != nil {
		errs = append(errs, err)
	}
	if err := checkBool("has_previous", expect.HasPrevious, trace.HasPrevious, trace); err != nil {
		errs = append(errs, err)
	}
	if expect.NextURL != "" && expect.NextURL != trace.NextURL {
		errs = append(errs, fail("next_url", expect.NextURL, trace.NextURL, trace))
	}
	if expect.PreviousURL != "" && expect.PreviousURL != trace.PreviousURL {
		errs = append(errs, fail("previous_url", expect.PreviousURL, trace.PreviousURL, trace))
	}
	return errs
}

func checkInt(check string, want *int64, got int64, trace StepTrace) error {
	if want == nil || *want == got {
		return nil
	}
	return fail(check, fmt.Sprintf("%d", *want), fmt.Sprintf("%d", got), trace)
}

func checkBool(check string, want *bool, got bool, trace StepTrace) error {
	if want == nil || *want == got {
		return nil
	}
	return fail(check, fmt.Sprintf("%t", *want), fmt.Sprintf("%t", got), trace)
}

func fail(check, expected, actual string, trace StepTrace) *AssertionError {
	return &AssertionError{Check: check, Expected: expected, Actual: actual, Trace: trace}
}
