package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/relcalc/internal/engine"
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/loader"
	"github.com/roach88/relcalc/internal/pretty"
	"github.com/roach88/relcalc/internal/store"
	"github.com/roach88/relcalc/internal/testutil"
)

// Harness runs one scenario against a private in-memory store.
type Harness struct {
	store  *store.Store
	loader *loader.Loader
	clock  *testutil.StepClock
	runIDs *testutil.FixedRunID
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// The returned error is reserved for harness failures (an unusable store
// or fixture). A program that fails, or fails to load, is an outcome and
// is compared against Expect.Error.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for store access.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := testutil.DiscardLogger()
	h := &Harness{
		store:  st,
		loader: loader.New(loader.WithTables(st), loader.WithLogger(logger)),
		clock:  testutil.NewStepClock(0),
		runIDs: testutil.NewFixedRunID(scenario.RunID),
		logger: logger,
	}

	for _, fixture := range scenario.Tables {
		if err := h.seed(ctx, scenario.Name, fixture); err != nil {
			return nil, fmt.Errorf("table %s: %w", fixture.Name, err)
		}
	}

	result := NewResult()
	h.evaluate(ctx, scenario, result)
	h.check(scenario, result)
	return result, nil
}

func (h *Harness) evaluator(p *loader.Program, out *bytes.Buffer, maxSteps int) *engine.Evaluator {
	opts := []engine.Option{
		engine.WithOutput(out),
		engine.WithLogger(h.logger),
		engine.WithRunID(h.runIDs),
		engine.WithClock(h.clock),
	}
	if maxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(maxSteps))
	}
	return engine.New(p.Decls, opts...)
}

// seed evaluates a fixture and stores the resulting table.
func (h *Harness) seed(ctx context.Context, scenario string, fixture TableFixture) error {
	p, err := h.loader.LoadNode(ctx, scenario+"/"+fixture.Name, &fixture.Value)
	if err != nil {
		return err
	}
	var discard bytes.Buffer
	v, err := h.evaluator(p, &discard, 0).Eval(p.Root)
	if err != nil {
		return err
	}
	tbl, ok := v.(*ir.Table)
	if !ok {
		return fmt.Errorf("value is %s, not a table", ir.KindName(v))
	}
	return h.store.SaveTable(ctx, fixture.Name, tbl)
}

func (h *Harness) evaluate(ctx context.Context, scenario *Scenario, result *Result) {
	result.RunID = h.runIDs.Generate()

	p, err := h.loader.LoadNode(ctx, scenario.Name, &scenario.Program)
	if err != nil {
		result.ErrorCode = errorCode(err)
		return
	}
	if errs := loader.Validate(p); len(errs) > 0 {
		result.ErrorCode = errorCode(errs[0])
		return
	}

	var out bytes.Buffer
	eng := h.evaluator(p, &out, scenario.MaxSteps)

	var value ir.Term
	if scenario.Mode == ModeTrace {
		tr, terr := eng.Trace(p.Root)
		result.addSteps(tr.Steps)
		value, err = tr.Result, terr
	} else {
		var res *engine.Result
		res, err = eng.Run(p.Root)
		if res != nil {
			value = res.Value
		}
	}
	result.Output = splitLines(out.String())

	if err != nil {
		result.ErrorCode = errorCode(err)
		return
	}
	result.Value = pretty.Term(value)
}

func (h *Harness) check(scenario *Scenario, result *Result) {
	want := scenario.Expect

	if !slices.Equal(want.Output, result.Output) && (len(want.Output) > 0 || len(result.Output) > 0) {
		result.addErrorf("output: expected %q, got %q", want.Output, result.Output)
	}

	switch {
	case want.Error != "" && result.ErrorCode != want.Error:
		result.addErrorf("error: expected %s, got %s", want.Error, orNone(result.ErrorCode))
	case want.Error == "" && result.ErrorCode != "":
		result.addErrorf("error: expected none, got %s", result.ErrorCode)
	}

	if want.Result != "" && want.Error == "" && result.ErrorCode == "" && want.Result != result.Value {
		result.addErrorf("result: expected %s, got %s", want.Result, result.Value)
	}

	for _, a := range scenario.Assertions {
		if err := checkAssertion(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
}

// errorCode maps a load, validation or evaluation error to its code.
func errorCode(err error) string {
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	if code := loader.CodeOf(err); code != "" {
		return code
	}
	var quota *engine.StepsExceededError
	if errors.As(err, &quota) {
		return string(engine.ErrCodeStepsExceeded)
	}
	return "ERROR"
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
