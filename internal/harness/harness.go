package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/compiler"
	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
	"github.com/roach88/vanilla/internal/registry"
	"github.com/roach88/vanilla/internal/store"
	"github.com/roach88/vanilla/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario steps with a deterministic clock and key suffixes.
type Harness struct {
	store    *store.Store
	registry *registry.Registry
	cue      *cue.Context
	opts     []query.Option
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Compile the scenario's CUE specs into a registry
//  2. Create a fresh in-memory store and seed the fixtures
//  3. Build and execute each step's query, recording a trace
//  4. Check each step's expect clause
//
// Step failures are reported in the Result; the returned error is for
// scenarios that could not be set up at all.
func Run(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cueCtx := cuecontext.New()
	opts := []query.Option{
		query.WithTokens(clause.NewSequenceTokens()),
		query.WithSiteURL(scenario.SiteURL),
	}

	reg, err := loadRegistry(cueCtx, scenario.Specs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}

	st, err := store.Open(":memory:", logger, store.WithClock(testutil.NewRunClock(0)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	stats, err := st.Seed(ctx, &scenario.Fixtures)
	if err != nil {
		return nil, fmt.Errorf("failed to seed fixtures: %w", err)
	}
	logger.Debug("fixtures seeded", "scenario", scenario.Name, "posts", stats.Posts, "meta", stats.Meta)

	h := &Harness{
		store:    st,
		registry: reg,
		cue:      cueCtx,
		opts:     opts,
		logger:   logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		trace := h.executeStep(ctx, i, step)
		result.AddTrace(trace)
		for _, err := range checkExpect(trace, step.Expect) {
			result.AddError(err.Error())
		}
	}

	logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// loadRegistry compiles the spec files into a registry. Files are
// unified into one value, so definitions may be split across them.
func loadRegistry(cueCtx *cue.Context, specs []string, opts []query.Option) (*registry.Registry, error) {
	value := cueCtx.CompileString("{}")
	for _, path := range specs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read spec: %w", err)
		}
		v := cueCtx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		value = value.Unify(v)
	}

	set, errs := compiler.CompileSpecs(value, true)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	reg, err := registry.FromSpecs(set, opts...)
	if err != nil {
		return nil, err
	}
	if verrs := reg.Validate(); len(verrs) > 0 {
		return nil, verrs[0]
	}
	return reg, nil
}

// executeStep builds and runs one step. Errors are recorded in the
// trace rather than returned.
func (h *Harness) executeStep(ctx context.Context, index int, step Step) StepTrace {
	trace := StepTrace{Step: index, Label: step.label(index), Slugs: []string{}}

	b, err := h.builder(index, step)
	if err != nil {
		trace.Error = err.Error()
		return trace
	}

	req, err := stepRequest(step)
	if err != nil {
		trace.Error = err.Error()
		return trace
	}

	var page *query.Paginator
	if step.PerPage > 0 {
		page, err = b.Paginate(ctx, h.store, req, step.PerPage)
	} else {
		page, err = b.Paginator(ctx, h.store, req)
	}

	if err != nil {
		// no page to take the executed args from
		trace.setArgs(b.BuildArgs(req))
		trace.Error = err.Error()
		h.logger.Info("step failed", "step", index, "label", trace.Label, "error", err)
		return trace
	}

	trace.setArgs(page.Args())
	for _, post := range page.Items() {
		trace.Slugs = append(trace.Slugs, post.Name)
	}
	trace.Found = page.Found()
	trace.Pages = page.Pages()
	trace.CurrentPage = page.CurrentPage()
	trace.HasNext = page.HasNextPage()
	trace.HasPrevious = page.HasPreviousPage()
	trace.NextURL, _ = page.NextPageURL()
	trace.PreviousURL, _ = page.PreviousPageURL()

	h.logger.Info("step completed",
		"step", index,
		"label", trace.Label,
		"args_id", trace.ArgsID,
		"found", trace.Found,
	)
	return trace
}

// setArgs records args and their run ID.
func (st *StepTrace) setArgs(args *ir.Object) {
	st.Args = args
	if id, err := query.ArgsID(args); err == nil {
		st.ArgsID = id
	}
}

// builder resolves the step's query source to a fresh Builder.
func (h *Harness) builder(index int, step Step) (*query.Builder, error) {
	switch {
	case step.Query != "":
		return h.registry.Query(step.Query)
	case step.PostType != "":
		return h.registry.NewQuery(step.PostType)
	default:
		v := h.cue.CompileString(step.Def, cue.Filename(fmt.Sprintf("steps[%d].def", index)))
		def, err := compiler.CompileQuery(v)
		if err != nil {
			return nil, err
		}
		def.Name = step.label(index)
		if errs := compiler.Validate(def); len(errs) > 0 {
			return nil, errs[0]
		}
		return query.FromDef(*def, h.opts...)
	}
}

func stepRequest(step Step) (query.Request, error) {
	uri := step.Request
	if uri == "" {
		uri = "/"
	}
	req, err := query.NewRequest(uri)
	if err != nil {
		return query.Request{}, err
	}
	if step.PageNum != nil {
		req.Params.Set(query.PageParam, strconv.FormatInt(*step.PageNum, 10))
	}
	return req, nil
}
