package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test: a program, the tables it reads, and
// what evaluating it must produce.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description says what the scenario checks.
	Description string `yaml:"description"`

	// Tables are stored before the program is loaded, so that load terms
	// in the program can read them.
	Tables []TableFixture `yaml:"tables,omitempty"`

	// Program is the program document, inline.
	Program yaml.Node `yaml:"program"`

	// Mode is "run" (the default) or "trace". Trace assertions need "trace".
	Mode string `yaml:"mode,omitempty"`

	// MaxSteps bounds a trace. Zero means the engine default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// RunID fixes the run id. Empty means testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Expect is compared against the outcome.
	Expect Expectation `yaml:"expect"`

	// Assertions are checked after Expect.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// TableFixture is a table stored under Name before the program runs.
// Value is a term that must evaluate to a table.
type TableFixture struct {
	Name  string    `yaml:"name"`
	Value yaml.Node `yaml:"value"`
}

// Expectation is the expected outcome of a scenario.
type Expectation struct {
	// Output holds the printed lines, in order.
	Output []string `yaml:"output"`

	// Result is the pretty-printed final value. Empty skips the check.
	Result string `yaml:"result,omitempty"`

	// Error is the expected error code. Empty means evaluation succeeds.
	Error string `yaml:"error,omitempty"`
}

// Assertion is an extra check on the trace or the output.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Rule is the reduction rule name (trace_contains, trace_count).
	Rule string `yaml:"rule,omitempty"`

	// Rules is the expected rule order (trace_order).
	Rules []string `yaml:"rules,omitempty"`

	// Count is the expected number of steps by Rule (trace_count).
	Count int `yaml:"count,omitempty"`

	// Text must appear in some output line (output_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains  = "trace_contains"
	AssertTraceOrder     = "trace_order"
	AssertTraceCount     = "trace_count"
	AssertOutputContains = "output_contains"
)

// Evaluation modes.
const (
	ModeRun   = "run"
	ModeTrace = "trace"
)

// LoadScenario reads a scenario file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios reads every .yaml scenario in dir whose name matches
// filter (a filepath.Match pattern; empty matches all), sorted by file name.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	var scenarios []*Scenario
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if filter != "" {
			ok, err := filepath.Match(filter, s.Name)
			if err != nil {
				return nil, fmt.Errorf("bad filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		scenarios = append(scenarios, s)
	}

	if dups := lo.FindDuplicates(lo.Map(scenarios, func(s *Scenario, _ int) string { return s.Name })); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate scenario names: %s", strings.Join(dups, ", "))
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program.Kind == 0 {
		return fmt.Errorf("program is required")
	}

	switch s.Mode {
	case "", ModeRun, ModeTrace:
	default:
		return fmt.Errorf("mode %q: must be %q or %q", s.Mode, ModeRun, ModeTrace)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative")
	}

	for i, tbl := range s.Tables {
		if tbl.Name == "" {
			return fmt.Errorf("tables[%d]: name is required", i)
		}
		if tbl.Value.Kind == 0 {
			return fmt.Errorf("tables[%d] (%s): value is required", i, tbl.Name)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(s, a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(s *Scenario, a Assertion) error {
	switch a.Type {
	case AssertTraceContains, AssertTraceCount:
		if a.Rule == "" {
			return fmt.Errorf("%s requires rule", a.Type)
		}
	case AssertTraceOrder:
		if len(a.Rules) < 2 {
			return fmt.Errorf("%s requires at least two rules", a.Type)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("%s requires text", a.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	if s.Mode != ModeTrace {
		return fmt.Errorf("%s needs mode %q", a.Type, ModeTrace)
	}
	return nil
}
