package harness

import (
	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/grid"
	"github.com/roach88/ruleboard/internal/ir"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every record of the session in order, read back from
	// the trial log. Records cleared by a restart are still present.
	Trace []analytics.Record `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state after the last command.
	Final engine.StateSnapshot `json:"final"`

	// Summary is the stored end-of-trial report.
	Summary engine.Summary `json:"summary"`

	board *grid.Board
	rules []ir.Rule
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []analytics.Record{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Tags returns the trace's tags in order.
func (r *Result) Tags() []analytics.Tag {
	tags := make([]analytics.Tag, len(r.Trace))
	for i, rec := range r.Trace {
		tags[i] = rec.Tag
	}
	return tags
}
