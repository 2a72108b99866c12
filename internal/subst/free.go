package subst

import "github.com/roach88/relcalc/internal/ir"

// FreeVars returns the names of the variables occurring free in t.
func FreeVars(t ir.Term) map[string]bool {
	free := make(map[string]bool)
	collectFree(t, map[string]int{}, free)
	return free
}

// IsClosed reports whether t has no free variables.
func IsClosed(t ir.Term) bool {
	return len(FreeVars(t)) == 0
}

// collectFree walks t; bound counts how many enclosing binders bind each name.
func collectFree(t ir.Term, bound map[string]int, free map[string]bool) {
	if t == nil {
		return
	}
	walk := func(ts ...ir.Term) {
		for _, sub := range ts {
			collectFree(sub, bound, free)
		}
	}
	switch t := t.(type) {
	case *ir.Var:
		if bound[t.Name] == 0 {
			free[t.Name] = true
		}
	case *ir.If:
		walk(t.Cond, t.Then, t.Else)
	case *ir.Succ:
		walk(t.Arg)
	case *ir.Pred:
		walk(t.Arg)
	case *ir.Iszero:
		walk(t.Arg)
	case *ir.Not:
		walk(t.Arg)
	case *ir.And:
		walk(t.Left, t.Right)
	case *ir.Or:
		walk(t.Left, t.Right)
	case *ir.Equals:
		walk(t.Left, t.Right)
	case *ir.Less:
		walk(t.Left, t.Right)
	case *ir.Abs:
		withBound(bound, []string{t.Param}, func() { walk(t.Body) })
	case *ir.App:
		walk(t.Fn, t.Arg)
	case *ir.Fn:
		withBound(bound, t.ParamNames(), func() { walk(t.Body) })
	case *ir.Call:
		walk(t.Fn)
		walk(t.Args...)
	case *ir.Print:
		if expr, ok := t.Expr.(ir.Term); ok {
			walk(expr)
		}
	case *ir.Prog:
		walk(t.Stmts...)
	case *ir.Comma:
		walk(t.Items...)
	case *ir.Record:
		for _, f := range t.Fields {
			walk(f.Value)
		}
	case *ir.Table:
		for _, r := range t.Rows {
			walk(r)
		}
	case *ir.Proj:
		walk(t.Target)
	case *ir.Mem:
		walk(t.Target)
	case *ir.SelectFromWhere:
		walk(t.From)
		withBound(bound, aliases(t.As), func() {
			walk(t.Where)
			for _, f := range t.Projection {
				walk(f.Value)
			}
		})
	case *ir.Join:
		walk(t.Left, t.Right)
		withBound(bound, aliases(t.As), func() {
			walk(t.On)
			for _, f := range t.Projection {
				walk(f.Value)
			}
		})
	case *ir.Union:
		walk(t.Left, t.Right)
	case *ir.Intersect:
		walk(t.Left, t.Right)
	case *ir.Except:
		walk(t.Left, t.Right)
	}
}

func aliases(as string) []string {
	if as == "" {
		return nil
	}
	return []string{as}
}

func withBound(bound map[string]int, names []string, fn func()) {
	for _, n := range names {
		bound[n]++
	}
	fn()
	for _, n := range names {
		bound[n]--
	}
}
