package harness

import (
	"github.com/roach88/lits/internal/cli"
	"github.com/roach88/lits/internal/lits"
)

// Outcome is one converted declaration.
type Outcome struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Value string   `json:"value"` // emitted Go expression
	Human string   `json:"human"`
	Pos   lits.Pos `json:"pos"` // file relative to the scenario directory
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Outcomes lists the converted declarations in file order. Empty when
	// any diagnostic was reported, since conversion is all-or-nothing.
	Outcomes []Outcome `json:"outcomes"`

	// Diagnostics lists every reported error, sorted by position.
	Diagnostics []cli.Diagnostic `json:"diagnostics"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Files maps each generated file name to its contents.
	Files map[string]string `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Outcomes:    []Outcome{},
		Diagnostics: []cli.Diagnostic{},
		Errors:      []string{},
		Files:       make(map[string]string),
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcome returns the converted declaration called name.
func (r *Result) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}
