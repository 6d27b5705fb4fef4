package harness

import "github.com/roach88/vanilla/internal/ir"

// StepTrace records what one scenario step built and got back.
type StepTrace struct {
	Step        int        `json:"step"`
	Label       string     `json:"label"`
	ArgsID      string     `json:"args_id,omitempty"`
	Args        *ir.Object `json:"args,omitempty"`
	Slugs       []string   `json:"slugs"`
	Found       int64      `json:"found"`
	Pages       int64      `json:"pages"`
	CurrentPage int64      `json:"current_page"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
	NextURL     string     `json:"next_url,omitempty"`
	PreviousURL string     `json:"previous_url,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expect clause matched.
	Pass bool `json:"pass"`

	// Trace holds one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step trace.
func (r *Result) AddTrace(trace StepTrace) {
	r.Trace = append(r.Trace, trace)
}
