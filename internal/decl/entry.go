package decl

import (
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
)

type state int

const (
	pending state = iota
	forcing
	done
)

// Entry is the memoized cell of one declaration.
//
// Not safe for concurrent use; the evaluator is single-threaded.
type Entry struct {
	def   *ir.Def
	state state
	evals int
}

// Def returns the declaration node.
func (e *Entry) Def() *ir.Def {
	return e.def
}

// Name returns the declared name.
func (e *Entry) Name() string {
	return e.def.Name
}

// IsType reports whether the declaration binds a type.
func (e *Entry) IsType() bool {
	_, ok := e.def.Value.(ir.Type)
	return ok
}

// Force returns the declaration's evaluated value, calling eval on the
// stored term the first time only. On success the Def's value is
// overwritten with the result. A failed evaluation is not cached.
//
// Returns ErrNoTerm for type declarations and ErrCycle when called
// re-entrantly on the same entry.
func (e *Entry) Force(eval func(ir.Term) (ir.Term, error)) (ir.Term, error) {
	switch e.state {
	case done:
		return e.def.Value.(ir.Term), nil
	case forcing:
		return nil, fmt.Errorf("%w: %s", ErrCycle, e.def.Name)
	}

	t, ok := e.def.Value.(ir.Term)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTerm, e.def.Name)
	}

	e.state = forcing
	e.evals++
	v, err := eval(t)
	if err != nil {
		e.state = pending
		return nil, err
	}
	e.Settle(v)
	return v, nil
}

// Forced reports whether the entry holds its evaluated value.
func (e *Entry) Forced() bool {
	return e.state == done
}

// Evaluations returns how many times Force ran the evaluator.
func (e *Entry) Evaluations() int {
	return e.evals
}

// Peek returns the stored term without evaluating it.
func (e *Entry) Peek() (ir.Term, error) {
	t, ok := e.def.Value.(ir.Term)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTerm, e.def.Name)
	}
	return t, nil
}

// Replace stores a partially reduced term. The entry stays unforced.
// Used by single-step reduction.
func (e *Entry) Replace(t ir.Term) {
	if e.state == done {
		return
	}
	e.def.Value = t
}

// Settle stores v as the final value of the declaration.
func (e *Entry) Settle(v ir.Term) {
	e.def.Value = v
	e.state = done
}
