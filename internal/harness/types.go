package harness

import "github.com/roach88/flashdeck/internal/progress"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Action string `json:"action"`

	// At is the scenario clock, in milliseconds since the scenario start.
	At int64 `json:"at"`

	// Detail is a deterministic, human-readable description of the outcome.
	Detail string `json:"detail"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step behaved as expected and all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, including init.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Warnings holds recoverable store errors seen during the run.
	Warnings []string `json:"warnings,omitempty"`

	// Final is the progress table after the last step.
	Final progress.Table `json:"final"`

	// Start is the scenario start time in milliseconds since the epoch.
	Start int64 `json:"start"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Warnings: []string{},
		Final:    progress.Table{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(action string, at int64, detail string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    int64(len(r.Trace)),
		Action: action,
		At:     at,
		Detail: detail,
	})
}
