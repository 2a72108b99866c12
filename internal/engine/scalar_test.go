package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/relcalc/internal/ir"
)

func TestEval_PredSucc(t *testing.T) {
	for n := int64(0); n <= 20; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			assert.Equal(t, fmt.Sprint(n), evalString(t, pred1(succ1(num(n)))))
			assert.Equal(t, "false", evalString(t, iszero(succ1(num(n)))))
		})
	}
}

func TestEval_PredZeroSaturates(t *testing.T) {
	assert.Equal(t, "0", evalString(t, pred1(num(0))))
	assert.Equal(t, "0", evalString(t, pred1(pred1(num(1)))))
	assert.Equal(t, "true", evalString(t, iszero(num(0))))
}

func TestEval_SuccOverflow(t *testing.T) {
	err := evalErr(t, succ1(num(math.MaxInt64)))
	assert.True(t, IsTypeMismatch(err))
}

func TestEval_NatOperandMustBeInteger(t *testing.T) {
	for _, term := range []ir.Term{succ1(tru()), pred1(str("a")), iszero(unit()), succ1(num(-1))} {
		assert.True(t, IsTypeMismatch(evalErr(t, term)))
	}
}

func TestEval_If(t *testing.T) {
	branches := func(c ir.Term) ir.Term {
		return &ir.If{Cond: c, Then: succ1(num(1)), Else: pred1(num(1))}
	}

	assert.Equal(t, "2", evalString(t, branches(tru())))
	assert.Equal(t, "0", evalString(t, branches(fls())))
	assert.Equal(t, "2", evalString(t, branches(iszero(num(0)))))

	err := evalErr(t, branches(num(1)))
	assert.True(t, IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "if condition expects a boolean")
}

func TestEval_IfOnlyEvaluatesChosenBranch(t *testing.T) {
	term := &ir.If{Cond: tru(), Then: num(1), Else: succ1(tru())}
	assert.Equal(t, "1", evalString(t, term))
}

func TestEval_BooleanConnectives(t *testing.T) {
	tests := []struct {
		l, r    ir.Term
		and, or string
	}{
		{tru(), tru(), "true", "true"},
		{tru(), fls(), "false", "true"},
		{fls(), tru(), "false", "true"},
		{fls(), fls(), "false", "false"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.and, evalString(t, &ir.And{Left: tt.l, Right: tt.r}))
		assert.Equal(t, tt.or, evalString(t, &ir.Or{Left: tt.l, Right: tt.r}))
	}
	assert.Equal(t, "false", evalString(t, &ir.Not{Arg: tru()}))
	assert.Equal(t, "false", evalString(t, &ir.Not{Arg: iszero(num(0))}))
	assert.Equal(t, "true", evalString(t, &ir.Not{Arg: iszero(num(1))}))
}

func TestEval_ConnectivesDoNotShortCircuit(t *testing.T) {
	// The right operand is still evaluated, so its type error surfaces.
	assert.True(t, IsTypeMismatch(evalErr(t, &ir.And{Left: fls(), Right: succ1(tru())})))
	assert.True(t, IsTypeMismatch(evalErr(t, &ir.Or{Left: tru(), Right: succ1(tru())})))
}

func TestEval_ConnectivesRejectNonBooleans(t *testing.T) {
	assert.True(t, IsTypeMismatch(evalErr(t, &ir.And{Left: tru(), Right: num(1)})))
	assert.True(t, IsTypeMismatch(evalErr(t, &ir.Or{Left: num(0), Right: fls()})))
	assert.True(t, IsTypeMismatch(evalErr(t, &ir.Not{Arg: num(0)})))
}

func TestEval_Equals(t *testing.T) {
	tests := []struct {
		name string
		l, r ir.Term
		want string
	}{
		{"integers", succ1(num(1)), num(2), "true"},
		{"different integers", num(1), num(2), "false"},
		{"booleans", tru(), iszero(num(0)), "true"},
		{"strings", str("A"), str("A"), "true"},
		{"units", unit(), unit(), "true"},
		{"records any order", rec("a", num(1), "b", num(2)), rec("b", num(2), "a", num(1)), "true"},
		{"records differ", rec("a", num(1)), rec("a", num(2)), "false"},
		{
			"tables as sets",
			table([]string{"a"}, rec("a", num(1)), rec("a", num(2)), rec("a", num(1))),
			table([]string{"a"}, rec("a", num(2)), rec("a", num(1))),
			"true",
		},
		{"integer vs boolean", num(0), fls(), "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalString(t, eq(tt.l, tt.r)))
		})
	}
}

func TestEval_EqualsRejectsFunctions(t *testing.T) {
	err := evalErr(t, eq(lam("x", v("x")), lam("x", v("x"))))
	assert.True(t, IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "cannot compare abstraction with abstraction")

	id := fn([]string{"a"}, v("a"))
	assert.True(t, IsTypeMismatch(evalErr(t, eq(id, id))))
	assert.True(t, IsTypeMismatch(evalErr(t, eq(num(1), lam("x", v("x"))))))
}

func TestEval_Less(t *testing.T) {
	assert.Equal(t, "true", evalString(t, &ir.Less{Left: num(1), Right: num(2)}))
	assert.Equal(t, "false", evalString(t, &ir.Less{Left: num(2), Right: num(2)}))
	assert.Equal(t, "true", evalString(t, &ir.Less{Left: str("A"), Right: str("B")}))

	for _, term := range []ir.Term{
		&ir.Less{Left: tru(), Right: fls()},
		&ir.Less{Left: num(1), Right: str("1")},
		&ir.Less{Left: unit(), Right: unit()},
	} {
		assert.True(t, IsTypeMismatch(evalErr(t, term)))
	}
}
