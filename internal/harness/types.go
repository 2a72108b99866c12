package harness

import (
	"bytes"
	"fmt"

	"github.com/roach88/relcalc/internal/engine"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID is the run id the engine used.
	RunID string `json:"run_id"`

	// Output holds the printed lines.
	Output []string `json:"output"`

	// Value is the pretty-printed final value, empty on error.
	Value string `json:"value,omitempty"`

	// ErrorCode is the code of the error the program failed with.
	ErrorCode string `json:"error_code,omitempty"`

	// Steps is the rendered trace, in trace mode only.
	Steps []string `json:"steps,omitempty"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	rules []string
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Output: []string{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addErrorf(format string, args ...any) {
	r.AddError(fmt.Sprintf(format, args...))
}

func (r *Result) addSteps(steps []engine.TraceStep) {
	for _, s := range steps {
		r.Steps = append(r.Steps, s.String())
		r.rules = append(r.rules, s.Rule)
	}
}

// Snapshot renders the result in the golden file format.
func (r *Result) Snapshot(name string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "run_id: %s\n", r.RunID)
	b.WriteString("output:\n")
	for _, line := range r.Output {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if len(r.Steps) > 0 {
		b.WriteString("steps:\n")
		for _, s := range r.Steps {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}
	if r.ErrorCode != "" {
		fmt.Fprintf(&b, "error: %s\n", r.ErrorCode)
	} else {
		fmt.Fprintf(&b, "result: %s\n", r.Value)
	}
	return b.Bytes()
}
