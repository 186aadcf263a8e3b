package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect block and all assertions match.
	Pass bool `json:"pass"`

	// Output contains the JSON lines written, without line terminators.
	Output []string `json:"output"`

	// RowsRead and RowsWritten are the conversion counters.
	RowsRead    int64 `json:"rows_read"`
	RowsWritten int64 `json:"rows_written"`

	// ErrorKind and ErrorFields describe the error the run aborted with.
	ErrorKind   string   `json:"error_kind,omitempty"`
	ErrorFields []string `json:"error_fields,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Output: []string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
