package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/pretty"
)

// evalPrint writes the formatted value of a term, or the raw text of a
// type, as one line.
func (e *Evaluator) evalPrint(t *ir.Print) (ir.Term, error) {
	var line string
	switch expr := t.Expr.(type) {
	case ir.Type:
		line = pretty.Type(expr)
	case ir.Term:
		v, err := e.Eval(expr)
		switch {
		case errors.Is(err, ErrNoTerm):
			line = e.raw(expr)
		case err != nil:
			return nil, err
		default:
			line = pretty.Term(v)
		}
	default:
		return nil, structural(t, "print has no argument")
	}
	if err := e.emit(line); err != nil {
		return nil, err
	}
	return &ir.Unit{}, nil
}

// raw formats an expression that has no term value: a reference to a type
// declaration prints as the declared type.
func (e *Evaluator) raw(expr ir.Term) string {
	if ref, ok := expr.(*ir.Ref); ok {
		if entry, ok := e.decls.Lookup(ref.Name); ok && entry.IsType() {
			return pretty.Node(entry.Def().Value)
		}
	}
	return pretty.Node(expr)
}

func (e *Evaluator) emit(line string) error {
	if _, err := fmt.Fprintln(e.out, line); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}

// evalProg runs the statements in order and returns the last value.
func (e *Evaluator) evalProg(t *ir.Prog) (ir.Term, error) {
	if len(t.Stmts) == 0 {
		return nil, structural(t, "program has no statements")
	}
	var last ir.Term
	for _, stmt := range t.Stmts {
		v, err := e.Eval(stmt)
		switch {
		case errors.Is(err, ErrNoTerm):
			last = stmt
		case err != nil:
			return nil, err
		default:
			last = v
		}
	}
	return last, nil
}

// evalComma evaluates each item for effect. A bare comma list has no
// value beyond unit.
func (e *Evaluator) evalComma(t *ir.Comma) (ir.Term, error) {
	for _, item := range t.Items {
		if _, err := e.Eval(item); err != nil && !errors.Is(err, ErrNoTerm) {
			return nil, err
		}
	}
	return &ir.Unit{}, nil
}
