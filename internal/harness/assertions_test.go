package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRules = []string{"succ", "succ", "print", "prog", "iszero", "print", "prog"}

func TestCheckAssertion(t *testing.T) {
	r := &Result{rules: sampleRules, Output: []string{"2", "true"}}

	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{"contains", Assertion{Type: AssertTraceContains, Rule: "iszero"}, ""},
		{"contains missing", Assertion{Type: AssertTraceContains, Rule: "beta"}, "expected a beta step, got rules succ, print, prog, iszero"},
		{"count", Assertion{Type: AssertTraceCount, Rule: "print", Count: 2}, ""},
		{"count zero", Assertion{Type: AssertTraceCount, Rule: "beta", Count: 0}, ""},
		{"count wrong", Assertion{Type: AssertTraceCount, Rule: "succ", Count: 1}, "expected 1 succ steps, got 2"},
		{"order", Assertion{Type: AssertTraceOrder, Rules: []string{"succ", "print", "iszero"}}, ""},
		{"order reversed", Assertion{Type: AssertTraceOrder, Rules: []string{"iszero", "print"}}, "first print at step 3, before step 5"},
		{"order missing", Assertion{Type: AssertTraceOrder, Rules: []string{"succ", "delta"}}, "no delta step"},
		{"output", Assertion{Type: AssertOutputContains, Text: "tru"}, ""},
		{"output missing", Assertion{Type: AssertOutputContains, Text: "false"}, `expected output containing "false"`},
		{"unknown", Assertion{Type: "final_state"}, `unknown assertion type "final_state"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAssertion(r, tt.a)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAssertionError(t *testing.T) {
	err := &AssertionError{Type: AssertTraceCount, Expected: "1", Actual: "2"}
	assert.Equal(t, "assertion trace_count failed: expected 1, got 2", err.Error())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "(none)", summarize(nil))
	assert.Equal(t, "succ, print", summarize([]string{"succ", "print", "succ"}))
}
