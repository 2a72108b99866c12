package loader

import (
	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/ir"
)

// Validate performs the structural checks the evaluator relies on and
// returns every violation found, in document order.
func Validate(p *Program) []error {
	v := &validator{names: make(map[string]ir.Loc)}
	v.walk(p.Root)
	return v.errs
}

type validator struct {
	errs  []error
	names map[string]ir.Loc
}

func (v *validator) add(code string, loc ir.Loc, format string, args ...any) {
	v.errs = append(v.errs, errorf(code, loc, format, args...))
}

func (v *validator) unique(loc ir.Loc, what string, names []string) {
	for _, dup := range lo.FindDuplicates(names) {
		v.add(ErrCodeDuplicateName, loc, "duplicate %s %q", what, dup)
	}
}

func (v *validator) walk(t ir.Term) {
	switch t := t.(type) {
	case nil:
		return
	case *ir.Prog:
		if len(t.Stmts) == 0 {
			v.add(ErrCodeEmptyProg, t.Loc, "prog has no statements")
		}
	case *ir.Def:
		if first, seen := v.names[t.Name]; seen {
			v.add(ErrCodeDuplicate, t.Loc, "%s is already declared at %s", t.Name, first)
		} else {
			v.names[t.Name] = t.Loc
		}
	case *ir.Record:
		v.unique(t.Loc, "record label", t.Labels())
	case *ir.Table:
		if err := ir.Conforms(t); err != nil {
			v.add(ErrCodeSchema, t.Loc, "table: %v", err)
		}
	case *ir.Fn:
		v.unique(t.Loc, "parameter", t.ParamNames())
	case *ir.Call:
		if fn, ok := t.Fn.(*ir.Fn); ok && len(fn.Params) != len(t.Args) {
			v.add(ErrCodeArity, t.Loc, "call passes %d arguments to a function of %d parameters", len(t.Args), len(fn.Params))
		}
	case *ir.Proj:
		v.unique(t.Loc, "projected label", t.Labels)
	case *ir.SelectFromWhere:
		v.unique(t.Loc, "projected label", fieldLabels(t.Projection))
	case *ir.Join:
		v.unique(t.Loc, "projected label", fieldLabels(t.Projection))
	}
	for _, c := range children(t) {
		v.walk(c)
	}
}

func fieldLabels(fs []ir.Field) []string {
	return lo.Map(fs, func(f ir.Field, _ int) string { return f.Label })
}

// children returns the direct sub-terms of t in source order.
func children(t ir.Term) []ir.Term {
	switch t := t.(type) {
	case *ir.If:
		return []ir.Term{t.Cond, t.Then, t.Else}
	case *ir.Succ:
		return []ir.Term{t.Arg}
	case *ir.Pred:
		return []ir.Term{t.Arg}
	case *ir.Iszero:
		return []ir.Term{t.Arg}
	case *ir.Not:
		return []ir.Term{t.Arg}
	case *ir.And:
		return []ir.Term{t.Left, t.Right}
	case *ir.Or:
		return []ir.Term{t.Left, t.Right}
	case *ir.Equals:
		return []ir.Term{t.Left, t.Right}
	case *ir.Less:
		return []ir.Term{t.Left, t.Right}
	case *ir.Abs:
		return []ir.Term{t.Body}
	case *ir.App:
		return []ir.Term{t.Fn, t.Arg}
	case *ir.Fn:
		return []ir.Term{t.Body}
	case *ir.Call:
		return append([]ir.Term{t.Fn}, t.Args...)
	case *ir.Def:
		if term, ok := t.Value.(ir.Term); ok {
			return []ir.Term{term}
		}
	case *ir.Print:
		if term, ok := t.Expr.(ir.Term); ok {
			return []ir.Term{term}
		}
	case *ir.Prog:
		return t.Stmts
	case *ir.Comma:
		return t.Items
	case *ir.Record:
		return lo.Map(t.Fields, func(f ir.Field, _ int) ir.Term { return f.Value })
	case *ir.Table:
		return lo.Map(t.Rows, func(r *ir.Record, _ int) ir.Term { return r })
	case *ir.Proj:
		return []ir.Term{t.Target}
	case *ir.Mem:
		return []ir.Term{t.Target}
	case *ir.SelectFromWhere:
		return append([]ir.Term{t.From, t.Where}, fieldValues(t.Projection)...)
	case *ir.Join:
		return append([]ir.Term{t.Left, t.Right, t.On}, fieldValues(t.Projection)...)
	case *ir.Union:
		return []ir.Term{t.Left, t.Right}
	case *ir.Intersect:
		return []ir.Term{t.Left, t.Right}
	case *ir.Except:
		return []ir.Term{t.Left, t.Right}
	}
	return nil
}

func fieldValues(fs []ir.Field) []ir.Term {
	return lo.Map(fs, func(f ir.Field, _ int) ir.Term { return f.Value })
}
