package harness

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func checkAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(r.rules, a)
	case AssertTraceCount:
		return assertTraceCount(r.rules, a)
	case AssertTraceOrder:
		return assertTraceOrder(r.rules, a)
	case AssertOutputContains:
		return assertOutputContains(r.Output, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertTraceContains(rules []string, a Assertion) error {
	if lo.Contains(rules, a.Rule) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("a %s step", a.Rule),
		Actual:   fmt.Sprintf("rules %s", summarize(rules)),
	}
}

func assertTraceCount(rules []string, a Assertion) error {
	n := lo.Count(rules, a.Rule)
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s steps", a.Count, a.Rule),
		Actual:   fmt.Sprintf("%d", n),
	}
}

// assertTraceOrder checks that the first occurrences of a.Rules appear in
// the given order. Other steps may come in between.
func assertTraceOrder(rules []string, a Assertion) error {
	prev := -1
	for _, rule := range a.Rules {
		pos := lo.IndexOf(rules, rule)
		if pos < 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("rules in order %v", a.Rules),
				Actual:   fmt.Sprintf("no %s step", rule),
			}
		}
		if pos <= prev {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("rules in order %v", a.Rules),
				Actual:   fmt.Sprintf("first %s at step %d, before step %d", rule, pos+1, prev+1),
			}
		}
		prev = pos
	}
	return nil
}

func assertOutputContains(output []string, a Assertion) error {
	if lo.ContainsBy(output, func(line string) bool { return strings.Contains(line, a.Text) }) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("output containing %q", a.Text),
		Actual:   fmt.Sprintf("%q", output),
	}
}

// summarize lists the distinct rules in first-occurrence order.
func summarize(rules []string) string {
	if len(rules) == 0 {
		return "(none)"
	}
	return strings.Join(lo.Uniq(rules), ", ")
}
