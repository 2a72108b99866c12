package engine

import (
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/subst"
)

// evalApp: target first, then the argument, then the body with the
// argument substituted in, to normal form.
func (e *Evaluator) evalApp(t *ir.App) (ir.Term, error) {
	f, err := e.value(t.Fn)
	if err != nil {
		return nil, err
	}
	abs, err := asAbs(t, f)
	if err != nil {
		return nil, err
	}
	arg, err := e.value(t.Arg)
	if err != nil {
		return nil, err
	}
	return e.Eval(beta(abs, arg))
}

// evalCall evaluates the arguments left to right into a fresh slice; the
// Call node itself is never modified.
func (e *Evaluator) evalCall(t *ir.Call) (ir.Term, error) {
	f, err := e.value(t.Fn)
	if err != nil {
		return nil, err
	}
	fn, err := asFn(t, f, len(t.Args))
	if err != nil {
		return nil, err
	}
	args := make([]ir.Term, len(t.Args))
	for i, a := range t.Args {
		if args[i], err = e.value(a); err != nil {
			return nil, err
		}
	}
	return e.Eval(instantiate(fn, args))
}

func asAbs(at *ir.App, f ir.Term) (*ir.Abs, error) {
	abs, ok := f.(*ir.Abs)
	if !ok {
		return nil, newError(ErrCodeIllFormedApplication, at,
			"application target must be an abstraction, got %s", describe(f))
	}
	return abs, nil
}

func asFn(at *ir.Call, f ir.Term, nargs int) (*ir.Fn, error) {
	fn, ok := f.(*ir.Fn)
	if !ok {
		return nil, newError(ErrCodeIllFormedCall, at,
			"call target must be a function, got %s", describe(f))
	}
	if len(fn.Params) != nargs {
		return nil, newError(ErrCodeArityMismatch, at,
			"function takes %d arguments, called with %d", len(fn.Params), nargs)
	}
	return fn, nil
}

func beta(abs *ir.Abs, arg ir.Term) ir.Term {
	return subst.Subst(abs.Body, subst.Single(abs.Param, arg))
}

// instantiate substitutes all parameters at once.
func instantiate(fn *ir.Fn, args []ir.Term) ir.Term {
	return subst.Subst(fn.Body, subst.Zip(fn.ParamNames(), args))
}
