package harness

// EntityOutcome is one annotated entity of a scenario run.
type EntityOutcome struct {
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Qualifiers []string `json:"qualifiers"`

	defaults map[string]bool
}

// IsDefault reports whether the entity holds the default value of class.
func (e EntityOutcome) IsDefault(class string) bool {
	return e.defaults[class]
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Entities holds the annotated entities in document order.
	// Empty when the rules failed to load.
	Entities []EntityOutcome `json:"entities"`

	// LoadError is the code of the rule loading error, if any.
	LoadError string `json:"load_error,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Entities: []EntityOutcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
