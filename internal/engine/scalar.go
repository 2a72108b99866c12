package engine

import (
	"errors"
	"math"

	"github.com/roach88/relcalc/internal/ir"
)

func (e *Evaluator) evalIf(t *ir.If) (ir.Term, error) {
	c, err := e.boolean(t.Cond, "if condition")
	if err != nil {
		return nil, err
	}
	if c {
		return e.Eval(t.Then)
	}
	return e.Eval(t.Else)
}

func (e *Evaluator) evalSucc(t *ir.Succ) (ir.Term, error) {
	n, err := e.nat(t.Arg, "succ")
	if err != nil {
		return nil, err
	}
	return succ(t, n)
}

func (e *Evaluator) evalPred(t *ir.Pred) (ir.Term, error) {
	n, err := e.nat(t.Arg, "pred")
	if err != nil {
		return nil, err
	}
	return pred(n), nil
}

func (e *Evaluator) evalIszero(t *ir.Iszero) (ir.Term, error) {
	n, err := e.nat(t.Arg, "iszero")
	if err != nil {
		return nil, err
	}
	return ir.NewBool(n == 0), nil
}

func (e *Evaluator) evalAnd(t *ir.And) (ir.Term, error) {
	l, r, err := e.booleans(t.Left, t.Right, "and")
	if err != nil {
		return nil, err
	}
	return ir.NewBool(l && r), nil
}

func (e *Evaluator) evalOr(t *ir.Or) (ir.Term, error) {
	l, r, err := e.booleans(t.Left, t.Right, "or")
	if err != nil {
		return nil, err
	}
	return ir.NewBool(l || r), nil
}

func (e *Evaluator) evalNot(t *ir.Not) (ir.Term, error) {
	b, err := e.boolean(t.Arg, "not")
	if err != nil {
		return nil, err
	}
	return ir.NewBool(!b), nil
}

func (e *Evaluator) evalEquals(t *ir.Equals) (ir.Term, error) {
	l, err := e.value(t.Left)
	if err != nil {
		return nil, err
	}
	r, err := e.value(t.Right)
	if err != nil {
		return nil, err
	}
	return equals(t, l, r)
}

func (e *Evaluator) evalLess(t *ir.Less) (ir.Term, error) {
	l, err := e.value(t.Left)
	if err != nil {
		return nil, err
	}
	r, err := e.value(t.Right)
	if err != nil {
		return nil, err
	}
	return less(t, l, r)
}

// boolean evaluates t and requires a boolean.
func (e *Evaluator) boolean(t ir.Term, what string) (bool, error) {
	v, err := e.value(t)
	if err != nil {
		return false, err
	}
	return asBool(t, v, what)
}

// booleans evaluates both operands before checking either.
func (e *Evaluator) booleans(left, right ir.Term, what string) (bool, bool, error) {
	lv, err := e.value(left)
	if err != nil {
		return false, false, err
	}
	rv, err := e.value(right)
	if err != nil {
		return false, false, err
	}
	l, err := asBool(left, lv, what)
	if err != nil {
		return false, false, err
	}
	r, err := asBool(right, rv, what)
	if err != nil {
		return false, false, err
	}
	return l, r, nil
}

// nat evaluates t and requires a natural number.
func (e *Evaluator) nat(t ir.Term, what string) (int64, error) {
	v, err := e.value(t)
	if err != nil {
		return 0, err
	}
	return asNat(t, v, what)
}

// The helpers below apply a rule to operands that are already values.
// Eval and Step share them.

func asBool(at, v ir.Term, what string) (bool, error) {
	b, ok := ir.AsBool(v)
	if !ok {
		return false, typeMismatch(at, "%s expects a boolean, got %s", what, describe(v))
	}
	return b, nil
}

func asNat(at, v ir.Term, what string) (int64, error) {
	n, ok := v.(*ir.Int)
	if !ok {
		return 0, typeMismatch(at, "%s expects a natural number, got %s", what, describe(v))
	}
	if n.Value < 0 {
		return 0, typeMismatch(at, "%s expects a natural number, got negative %d", what, n.Value)
	}
	return n.Value, nil
}

func succ(at ir.Term, n int64) (ir.Term, error) {
	if n == math.MaxInt64 {
		return nil, typeMismatch(at, "succ overflows the natural number range")
	}
	return ir.NewInt(n + 1), nil
}

// pred saturates at zero.
func pred(n int64) ir.Term {
	if n == 0 {
		return ir.NewInt(0)
	}
	return ir.NewInt(n - 1)
}

func equals(at ir.Term, l, r ir.Term) (ir.Term, error) {
	eq, err := ir.Equal(l, r)
	if errors.Is(err, ir.ErrIncomparable) {
		return nil, typeMismatch(at, "cannot compare %s with %s", ir.KindName(l), ir.KindName(r))
	}
	if err != nil {
		return nil, typeMismatch(at, "cannot compare: %v", err)
	}
	return ir.NewBool(eq), nil
}

// less orders integers numerically and strings by code point.
func less(at ir.Term, l, r ir.Term) (ir.Term, error) {
	switch lv := l.(type) {
	case *ir.Int:
		if rv, ok := r.(*ir.Int); ok {
			return ir.NewBool(lv.Value < rv.Value), nil
		}
	case *ir.Str:
		if rv, ok := r.(*ir.Str); ok {
			return ir.NewBool(lv.Value < rv.Value), nil
		}
	}
	return nil, typeMismatch(at, "< expects two integers or two strings, got %s and %s",
		ir.KindName(l), ir.KindName(r))
}
