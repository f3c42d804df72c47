package harness

// TraceEntry is one line of a scenario trace: an accepted step, or a
// rejected event when Error is set.
type TraceEntry struct {
	Index     int      `json:"index"`
	Label     string   `json:"label"`
	Active    string   `json:"active,omitempty"`
	Connected []string `json:"connected"`
	Priority  []string `json:"priority"` // strongest first
	Error     string   `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation, invariant and assertion held.
	Pass bool `json:"pass"`

	// Trace starts with the initial step and has one entry per event.
	Trace []TraceEntry `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// SessionID is the journal session the scenario wrote.
	SessionID string `json:"session_id"`

	// Visualization is the strategy rendering after the last step.
	Visualization string `json:"visualization"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace entry.
func (r *Result) AddTrace(e TraceEntry) {
	r.Trace = append(r.Trace, e)
}
