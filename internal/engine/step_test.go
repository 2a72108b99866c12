package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/pretty"
)

func traceLines(tr *Trace) []string {
	lines := make([]string, len(tr.Steps))
	for i, s := range tr.Steps {
		lines[i] = s.String()
	}
	return lines
}

func TestStep_ValueHasNoRule(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)
	for _, val := range []ir.Term{num(1), tru(), unit(), lam("x", v("x")), rec("a", num(1))} {
		_, err := e.Step(val)
		assert.ErrorIs(t, err, ErrNoRuleApplies)
	}
	_, err := e.Step(v("free"))
	assert.ErrorIs(t, err, ErrNoRuleApplies)
}

func TestStep_OneRuleAtATime(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)

	next, err := e.Step(succ1(succ1(num(0))))
	require.NoError(t, err)
	assert.Equal(t, "succ 1", pretty.Term(next))

	next, err = e.Step(next)
	require.NoError(t, err)
	assert.Equal(t, "2", pretty.Term(next))
}

func TestStep_BetaDoesNotEvaluateBody(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)

	next, err := e.Step(app(lam("x", succ1(v("x"))), num(1)))
	require.NoError(t, err)
	assert.Equal(t, "succ 1", pretty.Term(next))
}

func TestStep_CallEvaluatesArgumentsFirst(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)
	f := fn([]string{"a", "b"}, &ir.Less{Left: v("a"), Right: v("b")})

	next, err := e.Step(call(f, num(1), pred1(num(3))))
	require.NoError(t, err)
	assert.Equal(t, "(fn(a, b) => a < b)(1, 2)", pretty.Term(next))

	next, err = e.Step(next)
	require.NoError(t, err)
	assert.Equal(t, "1 < 2", pretty.Term(next))
}

func TestStep_ErrorsMatchEval(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)

	_, err := e.Step(&ir.If{Cond: num(1), Then: num(1), Else: num(2)})
	assert.True(t, IsTypeMismatch(err))

	_, err = e.Step(call(fn([]string{"x"}, v("x"))))
	assert.True(t, IsArityMismatch(err))

	_, err = e.Step(succ1(v("x")))
	assert.True(t, IsTypeMismatch(err), "a stuck operand is a shape error")
}

func TestTrace_EndToEnd(t *testing.T) {
	e, out := newTestEvaluator(t, nil, WithClock(NewClockAt(100)))

	tr, err := e.Trace(prog(print1(succ1(succ1(num(0)))), print1(iszero(num(0)))))
	require.NoError(t, err)

	assert.Equal(t, "2\ntrue\n", out.String())
	assert.IsType(t, &ir.Unit{}, tr.Result)
	assert.Equal(t, "run-1", tr.RunID)
	assert.Equal(t, []string{
		"101 succ print succ 1; print iszero 0",
		"102 succ print 2; print iszero 0",
		"103 print unit; print iszero 0",
		"104 prog print iszero 0",
		"105 iszero print true",
		"106 print unit",
		"107 prog unit",
	}, traceLines(tr))
}

func TestTrace_AgreesWithEval(t *testing.T) {
	terms := []ir.Term{
		app(lam("x", &ir.If{Cond: iszero(v("x")), Then: str("z"), Else: str("nz")}), pred1(num(1))),
		&ir.Union{
			Left:  table([]string{"a"}, rec("a", succ1(num(0)))),
			Right: table([]string{"a"}, rec("a", num(1)), rec("a", num(2))),
		},
		&ir.SelectFromWhere{From: employees(), Where: eq(v("dept"), str("Y")), Projection: []ir.Field{ir.F("n", v("name"))}},
		&ir.And{Left: &ir.Not{Arg: fls()}, Right: &ir.Less{Left: num(1), Right: succ1(num(1))}},
	}
	for _, term := range terms {
		t.Run(pretty.Term(term), func(t *testing.T) {
			want := evalString(t, term)

			e, _ := newTestEvaluator(t, nil)
			tr, err := e.Trace(term)
			require.NoError(t, err)
			assert.Equal(t, want, pretty.Term(tr.Result))
		})
	}
}

func TestTrace_DeclarationReducedOnce(t *testing.T) {
	two := &ir.Def{Name: "two", Value: succ1(succ1(num(0)))}
	decls := declsWith(t, two)
	e, out := newTestEvaluator(t, decls)

	tr, err := e.Trace(prog(print1(ref("two")), print1(ref("two"))))
	require.NoError(t, err)
	assert.Equal(t, "2\n2\n", out.String())

	entry, _ := decls.Lookup("two")
	assert.True(t, entry.Forced())
	assert.Equal(t, "2", pretty.Node(two.Value))

	deltas := 0
	for _, s := range tr.Steps {
		if s.Rule == "delta" {
			deltas++
		}
	}
	// two steps reducing the declaration, then one lookup per reference
	assert.Equal(t, 4, deltas)
}

func TestTrace_TypeReferencePrintsType(t *testing.T) {
	decls := declsWith(t, &ir.Def{Name: "Pair", Value: &ir.RecordType{Fields: []ir.FieldType{
		{Label: "a", Type: &ir.NatType{}},
		{Label: "b", Type: &ir.BoolType{}},
	}}})
	e, out := newTestEvaluator(t, decls)

	_, err := e.Trace(print1(ref("Pair")))
	require.NoError(t, err)
	assert.Equal(t, "{a: Nat, b: Bool}\n", out.String())
}

func TestTrace_QuotaExceeded(t *testing.T) {
	e, _ := newTestEvaluator(t, nil, WithMaxSteps(2))

	tr, err := e.Trace(succ1(succ1(succ1(num(0)))))
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
	assert.Len(t, tr.Steps, 2)
}

func TestTrace_SelfDependentDeclaration(t *testing.T) {
	decls := declsWith(t, &ir.Def{Name: "loop", Value: succ1(ref("loop"))})
	e, _ := newTestEvaluator(t, decls)

	_, err := e.Trace(ref("loop"))
	assert.True(t, IsStructural(err))
}

func TestTrace_ErrorKeepsSteps(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)

	tr, err := e.Trace(prog(print1(num(1)), succ1(tru())))
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
	assert.Len(t, tr.Steps, 2)
}

func TestTrace_NonConformingTableLiteral(t *testing.T) {
	bad := table([]string{"a"}, rec("b", succ1(num(1))))

	e, _ := newTestEvaluator(t, nil)
	tr, err := e.Trace(bad)
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "table does not conform")
	assert.Len(t, tr.Steps, 1, "rows are reduced before the schema is checked")

	assert.True(t, IsTypeMismatch(evalErr(t, bad)))
}
