package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
)

func declsWith(t *testing.T, defs ...*ir.Def) *decl.Table {
	t.Helper()
	decls := decl.NewTable()
	for _, d := range defs {
		require.NoError(t, decls.Define(d))
	}
	return decls
}

func TestEval_RefMemoized(t *testing.T) {
	def := &ir.Def{Name: "n", Value: succ1(succ1(num(0)))}
	decls := declsWith(t, def)
	e, _ := newTestEvaluator(t, decls)

	first, err := e.Eval(ref("n"))
	require.NoError(t, err)

	entry, ok := decls.Lookup("n")
	require.True(t, ok)
	assert.True(t, entry.Forced())
	assert.Equal(t, 1, entry.Evaluations())
	assert.Same(t, first, def.Value, "the Def holds the evaluated value")

	second, err := e.Eval(ref("n"))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, entry.Evaluations())
}

func TestEval_RefSideEffectsHappenOnce(t *testing.T) {
	decls := declsWith(t, &ir.Def{Name: "noisy", Value: prog(print1(str("hi")), num(7))})
	e, out := newTestEvaluator(t, decls)

	got, err := e.Eval(call(fn([]string{"a", "b"}, v("b")), ref("noisy"), ref("noisy")))
	require.NoError(t, err)
	assert.Equal(t, "7", evalString(t, got))
	assert.Equal(t, "\"hi\"\n", out.String())
}

func TestEval_DefForcesAndReturnsItself(t *testing.T) {
	def := &ir.Def{Name: "three", Value: succ1(num(2))}
	decls := declsWith(t, def)
	e, _ := newTestEvaluator(t, decls)

	got, err := e.Eval(def)
	require.NoError(t, err)
	assert.Same(t, def, got)
	assert.Equal(t, int64(3), def.Value.(*ir.Int).Value)

	got, err = e.Eval(ref("three"))
	require.NoError(t, err)
	assert.Equal(t, "3", evalString(t, got))
}

func TestEval_DefNotInTableIsRegistered(t *testing.T) {
	e, _ := newTestEvaluator(t, nil)
	def := &ir.Def{Name: "k", Value: succ1(num(0))}

	_, err := e.Eval(def)
	require.NoError(t, err)

	entry, ok := e.Decls().Lookup("k")
	require.True(t, ok)
	assert.True(t, entry.Forced())
}

func TestEval_DefConflictingName(t *testing.T) {
	decls := declsWith(t, &ir.Def{Name: "k", Value: num(1)})
	e, _ := newTestEvaluator(t, decls)

	_, err := e.Eval(&ir.Def{Name: "k", Value: num(2)})
	assert.True(t, IsStructural(err))
}

func TestEval_TypeDeclaration(t *testing.T) {
	typeDef := &ir.Def{Name: "Num", Value: &ir.NatType{}}
	decls := declsWith(t, typeDef)
	e, out := newTestEvaluator(t, decls)

	got, err := e.Eval(typeDef)
	require.NoError(t, err)
	assert.Same(t, typeDef, got)

	_, err = e.Eval(ref("Num"))
	assert.True(t, errors.Is(err, ErrNoTerm))

	_, err = e.Eval(print1(ref("Num")))
	require.NoError(t, err)
	assert.Equal(t, "Nat\n", out.String())

	_, err = e.Eval(succ1(ref("Num")))
	assert.True(t, IsTypeMismatch(err))
}

func TestEval_UnknownRefUnchanged(t *testing.T) {
	r := ref("nowhere")
	e, _ := newTestEvaluator(t, nil)

	got, err := e.Eval(r)
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestEval_SelfDependentDeclaration(t *testing.T) {
	decls := declsWith(t, &ir.Def{Name: "loop", Value: succ1(ref("loop"))})
	e, _ := newTestEvaluator(t, decls)

	_, err := e.Eval(ref("loop"))
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.Contains(t, err.Error(), "loop depends on itself")

	entry, _ := decls.Lookup("loop")
	assert.False(t, entry.Forced(), "a failed evaluation is not cached")
}

func TestEval_FailedDeclarationRetried(t *testing.T) {
	decls := declsWith(t, &ir.Def{Name: "bad", Value: succ1(tru())})
	e, _ := newTestEvaluator(t, decls)

	for i := 0; i < 2; i++ {
		_, err := e.Eval(ref("bad"))
		assert.True(t, IsTypeMismatch(err))
	}
	entry, _ := decls.Lookup("bad")
	assert.Equal(t, 2, entry.Evaluations())
}
