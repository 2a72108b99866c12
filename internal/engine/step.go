package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/pretty"
)

// ErrNoRuleApplies is returned by Step when t is a value or is stuck.
var ErrNoRuleApplies = errors.New("no rule applies")

// Step performs one reduction of t.
//
// Congruence rules reduce the leftmost reducible sub-term in evaluation
// order; redex rules apply one beta, arithmetic, boolean, declaration,
// sequencing or table rule. The result may still be reducible. Row
// predicates and projections of a select or join are evaluated in full
// as part of that single table step.
//
// A reference to a type declaration yields ErrNoTerm.
func (e *Evaluator) Step(t ir.Term) (ir.Term, error) {
	next, _, err := e.step(t)
	return next, err
}

// TraceStep is one entry of a Trace.
type TraceStep struct {
	Seq  int64
	Rule string
	Term ir.Term
}

// String renders the step as "seq rule term".
func (s TraceStep) String() string {
	return fmt.Sprintf("%d %s %s", s.Seq, s.Rule, pretty.Term(s.Term))
}

// Trace is the sequence of terms Step produces on the way to a value.
type Trace struct {
	RunID  string
	Start  ir.Term
	Steps  []TraceStep
	Result ir.Term
}

// Trace steps t until no rule applies, recording every intermediate term.
// It fails with StepsExceededError after the configured number of steps.
// On error the returned Trace holds the steps taken so far.
func (e *Evaluator) Trace(t ir.Term) (*Trace, error) {
	runID := e.runIDs.Generate()
	log := e.logger.With("run_id", runID)
	quota := NewQuota(e.maxSteps)
	tr := &Trace{RunID: runID, Start: t, Result: t}

	log.Info("trace starting", "max_steps", e.maxSteps)
	cur := t
	for {
		next, rule, err := e.step(cur)
		if errors.Is(err, ErrNoRuleApplies) || errors.Is(err, ErrNoTerm) {
			break
		}
		if err != nil {
			log.Error("trace failed", "steps", quota.Current(), "error", err)
			return tr, err
		}
		if err := quota.Check(runID); err != nil {
			log.Error("max steps quota exceeded", "steps", quota.Current(), "limit", quota.MaxSteps())
			return tr, err
		}
		cur = next
		tr.Steps = append(tr.Steps, TraceStep{Seq: e.clock.Next(), Rule: rule, Term: cur})
		tr.Result = cur
		log.Debug("step", "rule", rule)
	}
	log.Info("trace finished", "steps", len(tr.Steps))
	return tr, nil
}

// step returns the reduced term and the name of the rule that fired.
func (e *Evaluator) step(t ir.Term) (ir.Term, string, error) {
	if t == nil || ir.IsValue(t) {
		return nil, "", ErrNoRuleApplies
	}

	switch t := t.(type) {
	case *ir.If:
		return e.unary(t.Cond, func(c ir.Term) ir.Term { return &ir.If{Loc: t.Loc, Cond: c, Then: t.Then, Else: t.Else} }, "if",
			func(v ir.Term) (ir.Term, error) {
				c, err := asBool(t.Cond, v, "if condition")
				if err != nil {
					return nil, err
				}
				if c {
					return t.Then, nil
				}
				return t.Else, nil
			})

	case *ir.Succ:
		return e.unary(t.Arg, func(a ir.Term) ir.Term { return &ir.Succ{Loc: t.Loc, Arg: a} }, "succ",
			func(v ir.Term) (ir.Term, error) {
				n, err := asNat(t.Arg, v, "succ")
				if err != nil {
					return nil, err
				}
				return succ(t, n)
			})
	case *ir.Pred:
		return e.unary(t.Arg, func(a ir.Term) ir.Term { return &ir.Pred{Loc: t.Loc, Arg: a} }, "pred",
			func(v ir.Term) (ir.Term, error) {
				n, err := asNat(t.Arg, v, "pred")
				if err != nil {
					return nil, err
				}
				return pred(n), nil
			})
	case *ir.Iszero:
		return e.unary(t.Arg, func(a ir.Term) ir.Term { return &ir.Iszero{Loc: t.Loc, Arg: a} }, "iszero",
			func(v ir.Term) (ir.Term, error) {
				n, err := asNat(t.Arg, v, "iszero")
				if err != nil {
					return nil, err
				}
				return ir.NewBool(n == 0), nil
			})
	case *ir.Not:
		return e.unary(t.Arg, func(a ir.Term) ir.Term { return &ir.Not{Loc: t.Loc, Arg: a} }, "not",
			func(v ir.Term) (ir.Term, error) {
				b, err := asBool(t.Arg, v, "not")
				if err != nil {
					return nil, err
				}
				return ir.NewBool(!b), nil
			})

	case *ir.And:
		return e.binary(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.And{Loc: t.Loc, Left: l, Right: r} }, "and",
			func(l, r ir.Term) (ir.Term, error) {
				lb, err := asBool(t.Left, l, "and")
				if err != nil {
					return nil, err
				}
				rb, err := asBool(t.Right, r, "and")
				if err != nil {
					return nil, err
				}
				return ir.NewBool(lb && rb), nil
			})
	case *ir.Or:
		return e.binary(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.Or{Loc: t.Loc, Left: l, Right: r} }, "or",
			func(l, r ir.Term) (ir.Term, error) {
				lb, err := asBool(t.Left, l, "or")
				if err != nil {
					return nil, err
				}
				rb, err := asBool(t.Right, r, "or")
				if err != nil {
					return nil, err
				}
				return ir.NewBool(lb || rb), nil
			})
	case *ir.Equals:
		return e.binary(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.Equals{Loc: t.Loc, Left: l, Right: r} }, "equals",
			func(l, r ir.Term) (ir.Term, error) { return equals(t, l, r) })
	case *ir.Less:
		return e.binary(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.Less{Loc: t.Loc, Left: l, Right: r} }, "less",
			func(l, r ir.Term) (ir.Term, error) { return less(t, l, r) })

	case *ir.App:
		return e.binary(t.Fn, t.Arg, func(f, a ir.Term) ir.Term { return &ir.App{Loc: t.Loc, Fn: f, Arg: a} }, "beta",
			func(f, a ir.Term) (ir.Term, error) {
				abs, err := asAbs(t, f)
				if err != nil {
					return nil, err
				}
				return beta(abs, a), nil
			})
	case *ir.Call:
		return e.stepCall(t)

	case *ir.Ref:
		return e.stepRef(t)
	case *ir.Def:
		return e.stepDef(t)

	case *ir.Print:
		return e.stepPrint(t)
	case *ir.Prog:
		return e.stepProg(t)
	case *ir.Comma:
		return e.stepComma(t)

	case *ir.Record:
		return e.stepRecord(t)
	case *ir.Table:
		for i, row := range t.Rows {
			if ir.IsValue(row) {
				continue
			}
			return e.congruence(row, func(r ir.Term) ir.Term {
				rows := slices.Clone(t.Rows)
				rows[i] = r.(*ir.Record)
				return &ir.Table{Loc: t.Loc, Schema: t.Schema, Rows: rows}
			})
		}
		if err := ir.Conforms(t); err != nil {
			return nil, "", typeMismatch(t, "table does not conform to its schema: %v", err)
		}
		return nil, "", ErrNoRuleApplies
	case *ir.Mem:
		return e.unary(t.Target, func(x ir.Term) ir.Term { return &ir.Mem{Loc: t.Loc, Target: x, Label: t.Label} }, "mem",
			func(v ir.Term) (ir.Term, error) { return mem(t, v) })
	case *ir.Proj:
		return e.unary(t.Target, func(x ir.Term) ir.Term { return &ir.Proj{Loc: t.Loc, Target: x, Labels: t.Labels} }, "proj",
			func(v ir.Term) (ir.Term, error) { return proj(t, v) })
	case *ir.SelectFromWhere:
		return e.unary(t.From, func(x ir.Term) ir.Term {
			return &ir.SelectFromWhere{Loc: t.Loc, Projection: t.Projection, From: x, Where: t.Where, As: t.As}
		}, "select", func(v ir.Term) (ir.Term, error) {
			src, err := e.checkedTable(t.From, v, "select")
			if err != nil {
				return nil, err
			}
			return e.selectFromWhere(t, src)
		})
	case *ir.Join:
		return e.binary(t.Left, t.Right, func(l, r ir.Term) ir.Term {
			return &ir.Join{Loc: t.Loc, Left: l, Right: r, On: t.On, Projection: t.Projection, As: t.As}
		}, "join", func(lv, rv ir.Term) (ir.Term, error) {
			l, err := e.checkedTable(t.Left, lv, "join")
			if err != nil {
				return nil, err
			}
			r, err := e.checkedTable(t.Right, rv, "join")
			if err != nil {
				return nil, err
			}
			return e.join(t, l, r)
		})
	case *ir.Union:
		return e.setStep(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.Union{Loc: t.Loc, Left: l, Right: r} },
			"union", func(l, r *ir.Table) (ir.Term, error) { return union(t, l, r) })
	case *ir.Intersect:
		return e.setStep(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.Intersect{Loc: t.Loc, Left: l, Right: r} },
			"intersect", func(l, r *ir.Table) (ir.Term, error) { return intersect(t, l, r) })
	case *ir.Except:
		return e.setStep(t.Left, t.Right, func(l, r ir.Term) ir.Term { return &ir.Except{Loc: t.Loc, Left: l, Right: r} },
			"except", func(l, r *ir.Table) (ir.Term, error) { return except(t, l, r) })
	}

	// Var and anything without a rule are stuck.
	return nil, "", ErrNoRuleApplies
}

// congruence steps sub and rebuilds the parent around the result.
func (e *Evaluator) congruence(sub ir.Term, rebuild func(ir.Term) ir.Term) (ir.Term, string, error) {
	next, rule, err := e.step(sub)
	if errors.Is(err, ErrNoTerm) {
		return nil, "", typeMismatch(sub, "expected a value, got a reference to a type declaration")
	}
	if err != nil {
		return nil, "", err
	}
	return rebuild(next), rule, nil
}

func (e *Evaluator) unary(arg ir.Term, rebuild func(ir.Term) ir.Term, rule string,
	apply func(ir.Term) (ir.Term, error)) (ir.Term, string, error) {
	if !ir.IsValue(arg) {
		return e.stuckOr(arg, rebuild, apply, rule)
	}
	v, err := apply(arg)
	if err != nil {
		return nil, "", err
	}
	return v, rule, nil
}

func (e *Evaluator) binary(left, right ir.Term, rebuild func(l, r ir.Term) ir.Term, rule string,
	apply func(l, r ir.Term) (ir.Term, error)) (ir.Term, string, error) {
	if !ir.IsValue(left) {
		return e.stuckOr(left, func(l ir.Term) ir.Term { return rebuild(l, right) },
			func(l ir.Term) (ir.Term, error) { return apply(l, right) }, rule)
	}
	if !ir.IsValue(right) {
		return e.stuckOr(right, func(r ir.Term) ir.Term { return rebuild(left, r) },
			func(r ir.Term) (ir.Term, error) { return apply(left, r) }, rule)
	}
	v, err := apply(left, right)
	if err != nil {
		return nil, "", err
	}
	return v, rule, nil
}

// stuckOr takes a congruence step into sub. When sub is stuck (a free
// variable, an unknown reference) the rule is applied to it as is, so the
// operator reports the shape error Eval would report.
func (e *Evaluator) stuckOr(sub ir.Term, rebuild func(ir.Term) ir.Term,
	apply func(ir.Term) (ir.Term, error), rule string) (ir.Term, string, error) {
	next, r, err := e.congruence(sub, rebuild)
	if !errors.Is(err, ErrNoRuleApplies) {
		return next, r, err
	}
	v, err := apply(sub)
	if err != nil {
		return nil, "", err
	}
	return v, rule, nil
}

func (e *Evaluator) setStep(left, right ir.Term, rebuild func(l, r ir.Term) ir.Term, rule string,
	apply func(l, r *ir.Table) (ir.Term, error)) (ir.Term, string, error) {
	return e.binary(left, right, rebuild, rule, func(lv, rv ir.Term) (ir.Term, error) {
		l, err := e.checkedTable(left, lv, rule)
		if err != nil {
			return nil, err
		}
		r, err := e.checkedTable(right, rv, rule)
		if err != nil {
			return nil, err
		}
		return apply(l, r)
	})
}

// checkedTable requires a table value that conforms to its schema, the
// check Eval makes when it evaluates a table literal.
func (e *Evaluator) checkedTable(at, v ir.Term, what string) (*ir.Table, error) {
	tbl, err := asTable(at, v, what)
	if err != nil {
		return nil, err
	}
	if err := ir.Conforms(tbl); err != nil {
		return nil, typeMismatch(at, "table does not conform to its schema: %v", err)
	}
	return tbl, nil
}

func (e *Evaluator) stepCall(t *ir.Call) (ir.Term, string, error) {
	if !ir.IsValue(t.Fn) {
		return e.stuckOr(t.Fn, func(f ir.Term) ir.Term { return &ir.Call{Loc: t.Loc, Fn: f, Args: t.Args} },
			func(f ir.Term) (ir.Term, error) { _, err := asFn(t, f, len(t.Args)); return nil, err }, "call")
	}
	fn, err := asFn(t, t.Fn, len(t.Args))
	if err != nil {
		return nil, "", err
	}
	for i, a := range t.Args {
		if ir.IsValue(a) {
			continue
		}
		next, rule, err := e.congruence(a, func(x ir.Term) ir.Term {
			args := slices.Clone(t.Args)
			args[i] = x
			return &ir.Call{Loc: t.Loc, Fn: t.Fn, Args: args}
		})
		if errors.Is(err, ErrNoRuleApplies) {
			// A stuck argument is substituted as is, like Eval does.
			continue
		}
		return next, rule, err
	}
	return instantiate(fn, t.Args), "call", nil
}

func (e *Evaluator) stepRecord(t *ir.Record) (ir.Term, string, error) {
	for i, f := range t.Fields {
		if ir.IsValue(f.Value) {
			continue
		}
		return e.congruence(f.Value, func(v ir.Term) ir.Term {
			fields := slices.Clone(t.Fields)
			fields[i] = ir.F(f.Label, v)
			return &ir.Record{Loc: t.Loc, Fields: fields}
		})
	}
	return nil, "", ErrNoRuleApplies
}

// stepRef reduces the declaration behind a reference by one step and
// memoizes it in place, so the declaration is still reduced only once
// however many references step through it.
func (e *Evaluator) stepRef(t *ir.Ref) (ir.Term, string, error) {
	entry, ok := e.decls.Lookup(t.Name)
	if !ok {
		return nil, "", ErrNoRuleApplies
	}
	if entry.Forced() {
		v, err := entry.Peek()
		return v, "delta", err
	}
	stored, err := entry.Peek()
	if err != nil {
		return nil, "", err
	}
	if ir.IsValue(stored) {
		entry.Settle(stored)
		return stored, "delta", nil
	}
	if _, err := e.advance(t, entry, stored); err != nil {
		return nil, "", err
	}
	return t, "delta", nil
}

// stepDef reduces a declaration's value by one step.
func (e *Evaluator) stepDef(t *ir.Def) (ir.Term, string, error) {
	entry, err := e.entryFor(t)
	if err != nil {
		return nil, "", err
	}
	if entry.IsType() || entry.Forced() {
		return nil, "", ErrNoRuleApplies
	}
	stored, err := entry.Peek()
	if err != nil {
		return nil, "", err
	}
	if ir.IsValue(stored) {
		entry.Settle(stored)
		return t, "def", nil
	}
	rule, err := e.advance(t, entry, stored)
	if err != nil {
		return nil, "", err
	}
	return t, rule, nil
}

// advance steps a declaration's stored term. A stored term that is stuck
// is settled as is.
func (e *Evaluator) advance(at ir.Term, entry *decl.Entry, stored ir.Term) (string, error) {
	name := entry.Name()
	if e.advancing[name] {
		return "", structural(at, "declaration %s depends on itself", name)
	}
	e.advancing[name] = true
	defer delete(e.advancing, name)

	next, rule, err := e.step(stored)
	switch {
	case errors.Is(err, ErrNoRuleApplies):
		entry.Settle(stored)
		return "def", nil
	case errors.Is(err, ErrNoTerm):
		return "", typeMismatch(at, "declaration %s is a reference to a type declaration", entry.Name())
	case err != nil:
		return "", err
	}
	if ir.IsValue(next) {
		entry.Settle(next)
	} else {
		entry.Replace(next)
	}
	return rule, nil
}

func (e *Evaluator) stepPrint(t *ir.Print) (ir.Term, string, error) {
	expr, ok := t.Expr.(ir.Term)
	if !ok {
		if t.Expr == nil {
			return nil, "", structural(t, "print has no argument")
		}
		if err := e.emit(pretty.Node(t.Expr)); err != nil {
			return nil, "", err
		}
		return &ir.Unit{}, "print", nil
	}

	if !ir.IsValue(expr) {
		next, rule, err := e.step(expr)
		switch {
		case errors.Is(err, ErrNoTerm):
			if err := e.emit(e.raw(expr)); err != nil {
				return nil, "", err
			}
			return &ir.Unit{}, "print", nil
		case errors.Is(err, ErrNoRuleApplies):
			// stuck: print it as it stands
		case err != nil:
			return nil, "", err
		default:
			return &ir.Print{Loc: t.Loc, Expr: next}, rule, nil
		}
	}
	if err := e.emit(pretty.Term(expr)); err != nil {
		return nil, "", err
	}
	return &ir.Unit{}, "print", nil
}

// stepProg reduces the first statement; a statement that cannot reduce
// any further is dropped, unless it is the last one.
func (e *Evaluator) stepProg(t *ir.Prog) (ir.Term, string, error) {
	if len(t.Stmts) == 0 {
		return nil, "", structural(t, "program has no statements")
	}
	first := t.Stmts[0]
	next, rule, err := e.step(first)
	switch {
	case errors.Is(err, ErrNoRuleApplies), errors.Is(err, ErrNoTerm):
		if len(t.Stmts) == 1 {
			return first, "prog", nil
		}
		return &ir.Prog{Loc: t.Loc, Stmts: t.Stmts[1:]}, "prog", nil
	case err != nil:
		return nil, "", err
	}
	stmts := slices.Clone(t.Stmts)
	stmts[0] = next
	return &ir.Prog{Loc: t.Loc, Stmts: stmts}, rule, nil
}

// stepComma reduces the first unfinished item; finished items are
// replaced by unit, and a list of values steps to unit.
func (e *Evaluator) stepComma(t *ir.Comma) (ir.Term, string, error) {
	for i, item := range t.Items {
		if ir.IsValue(item) {
			continue
		}
		next, rule, err := e.step(item)
		switch {
		case errors.Is(err, ErrNoRuleApplies), errors.Is(err, ErrNoTerm):
			next, rule = &ir.Unit{}, "comma"
		case err != nil:
			return nil, "", err
		}
		items := slices.Clone(t.Items)
		items[i] = next
		return &ir.Comma{Loc: t.Loc, Items: items}, rule, nil
	}
	return &ir.Unit{}, "comma", nil
}
