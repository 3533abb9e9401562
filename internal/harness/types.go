package harness

import "github.com/roach88/pandafill/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records are the stored events in clock order, one per scenario event.
	Records []ir.EventRecord `json:"records"`

	// Documents are the decoded output documents, parallel to Records.
	// Failed events have a nil document.
	Documents []map[string]any `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
