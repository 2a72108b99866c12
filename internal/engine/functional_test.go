package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/pretty"
	"github.com/roach88/relcalc/internal/subst"
)

func TestEval_Beta(t *testing.T) {
	body := &ir.If{Cond: iszero(v("x")), Then: str("zero"), Else: succ1(v("x"))}
	for _, arg := range []ir.Term{num(0), num(3)} {
		direct := evalString(t, subst.Subst(body, subst.Single("x", arg)))
		assert.Equal(t, direct, evalString(t, app(lam("x", body), arg)))
	}
}

func TestEval_AppEvaluatesTargetAndArgument(t *testing.T) {
	pickInc := &ir.If{Cond: tru(), Then: lam("n", succ1(v("n"))), Else: lam("n", v("n"))}
	assert.Equal(t, "5", evalString(t, app(pickInc, succ1(num(3)))))
}

func TestEval_AppIsCaptureAvoiding(t *testing.T) {
	// (\x. \y. x) y  must not become \y. y
	e, _ := newTestEvaluator(t, nil)
	got, err := e.Eval(app(lam("x", lam("y", v("x"))), v("y")))
	require.NoError(t, err)

	abs, ok := got.(*ir.Abs)
	require.True(t, ok)
	assert.NotEqual(t, "y", abs.Param)
	assert.Equal(t, "y", abs.Body.(*ir.Var).Name)
}

func TestEval_Curried(t *testing.T) {
	add := lam("a", lam("b", &ir.If{Cond: iszero(v("a")), Then: v("b"), Else: succ1(v("b"))}))
	assert.Equal(t, "3", evalString(t, app(app(add, num(1)), num(2))))
}

func TestEval_CallSimultaneous(t *testing.T) {
	// v1 mentions y; it must not be affected by the substitution for y.
	v1 := lam("z", v("y"))
	f := fn([]string{"x", "y"}, rec("first", v("x"), "second", v("y")))

	got := evalString(t, call(f, v1, num(2)))
	assert.Equal(t, `{first = \z. y, second = 2}`, got)
}

func TestEval_CallEvaluatesArgumentsLeftToRight(t *testing.T) {
	e, out := newTestEvaluator(t, nil)
	f := fn([]string{"a", "b"}, unit())

	_, err := e.Eval(call(f,
		&ir.Comma{Items: []ir.Term{print1(str("first"))}},
		&ir.Comma{Items: []ir.Term{print1(str("second"))}},
	))
	require.NoError(t, err)
	assert.Equal(t, "\"first\"\n\"second\"\n", out.String())
}

func TestEval_CallDoesNotMutateArguments(t *testing.T) {
	arg := succ1(num(1))
	c := &ir.Call{Fn: fn([]string{"x"}, v("x")), Args: []ir.Term{arg}}

	assert.Equal(t, "2", evalString(t, c))
	assert.Same(t, arg, c.Args[0])
}

func TestEval_CallErrors(t *testing.T) {
	two := fn([]string{"x", "y"}, v("x"))

	err := evalErr(t, call(two, num(1)))
	assert.True(t, IsArityMismatch(err))
	assert.Contains(t, err.Error(), "takes 2 arguments, called with 1")

	err = evalErr(t, call(lam("x", v("x")), num(1)))
	assert.Equal(t, ErrCodeIllFormedCall, CodeOf(err))

	err = evalErr(t, app(two, num(1)))
	assert.Equal(t, ErrCodeIllFormedApplication, CodeOf(err))
}

func TestEval_CallArityCheckedBeforeArguments(t *testing.T) {
	// The bad argument is never reached.
	err := evalErr(t, call(fn(nil, unit()), succ1(tru())))
	assert.True(t, IsArityMismatch(err))
}

func TestEval_RecursionThroughDeclaration(t *testing.T) {
	// def count = fn(n) => if iszero n then 0 else succ (count(pred n))
	decls := decl.NewTable()
	body := &ir.If{
		Cond: iszero(v("n")),
		Then: num(0),
		Else: succ1(call(ref("count"), pred1(v("n")))),
	}
	require.NoError(t, decls.Define(&ir.Def{Name: "count", Value: fn([]string{"n"}, body)}))

	e, _ := newTestEvaluator(t, decls)
	got, err := e.Eval(call(ref("count"), num(5)))
	require.NoError(t, err)
	assert.Equal(t, "5", pretty.Term(got))
}
