// Package subst implements capture-avoiding substitution over ir terms.
//
// Substitution is a pure tree rebuild: the input term is never modified.
// Binders are Abs parameters, Fn parameters, and the row alias of
// SelectFromWhere and Join. Ref and Def are not traversed, since
// declarations are closed top-level bindings shared by reference.
package subst

import (
	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/ir"
)

// Mapping maps variable names to their replacements.
type Mapping map[string]ir.Term

// Single is a shorthand for a one-variable mapping.
func Single(name string, value ir.Term) Mapping {
	return Mapping{name: value}
}

// Zip pairs names with values. Extra names or values are ignored; callers
// check arity before substituting.
func Zip(names []string, values []ir.Term) Mapping {
	m := make(Mapping, len(names))
	for i, name := range names {
		if i < len(values) {
			m[name] = values[i]
		}
	}
	return m
}

// Subst replaces every free occurrence of the mapped variables in t,
// simultaneously. Replacements are not themselves substituted into, so
// [x := y, y := x] swaps x and y.
//
// A binder that occurs free in a replacement pushed beneath it is renamed
// to a fresh name first, so free variables of the replacements are never
// captured.
func Subst(t ir.Term, m Mapping) ir.Term {
	if t == nil || len(m) == 0 {
		return t
	}
	s := &substituter{taken: make(map[string]bool)}
	return s.term(t, m)
}

type substituter struct {
	// taken holds fresh names handed out during this call.
	taken map[string]bool
}

func (s *substituter) term(t ir.Term, m Mapping) ir.Term {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *ir.Var:
		if r, ok := m[t.Name]; ok {
			return r
		}
		return t
	case *ir.True, *ir.False, *ir.Int, *ir.Str, *ir.Unit, *ir.Ref, *ir.Def:
		return t
	case *ir.If:
		return &ir.If{Loc: t.Loc, Cond: s.term(t.Cond, m), Then: s.term(t.Then, m), Else: s.term(t.Else, m)}
	case *ir.Succ:
		return &ir.Succ{Loc: t.Loc, Arg: s.term(t.Arg, m)}
	case *ir.Pred:
		return &ir.Pred{Loc: t.Loc, Arg: s.term(t.Arg, m)}
	case *ir.Iszero:
		return &ir.Iszero{Loc: t.Loc, Arg: s.term(t.Arg, m)}
	case *ir.Not:
		return &ir.Not{Loc: t.Loc, Arg: s.term(t.Arg, m)}
	case *ir.And:
		return &ir.And{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	case *ir.Or:
		return &ir.Or{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	case *ir.Equals:
		return &ir.Equals{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	case *ir.Less:
		return &ir.Less{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	case *ir.Abs:
		params, body := s.under([]string{t.Param}, t.Body, m)
		return &ir.Abs{Loc: t.Loc, Param: params[0], ParamType: t.ParamType, Body: body}
	case *ir.App:
		return &ir.App{Loc: t.Loc, Fn: s.term(t.Fn, m), Arg: s.term(t.Arg, m)}
	case *ir.Fn:
		names, body := s.under(t.ParamNames(), t.Body, m)
		params := make([]ir.Param, len(t.Params))
		for i, p := range t.Params {
			params[i] = ir.Param{Name: names[i], Type: p.Type}
		}
		return &ir.Fn{Loc: t.Loc, Params: params, Body: body}
	case *ir.Call:
		return &ir.Call{Loc: t.Loc, Fn: s.term(t.Fn, m), Args: s.terms(t.Args, m)}
	case *ir.Print:
		if expr, ok := t.Expr.(ir.Term); ok {
			return &ir.Print{Loc: t.Loc, Expr: s.term(expr, m)}
		}
		return t
	case *ir.Prog:
		return &ir.Prog{Loc: t.Loc, Stmts: s.terms(t.Stmts, m)}
	case *ir.Comma:
		return &ir.Comma{Loc: t.Loc, Items: s.terms(t.Items, m)}
	case *ir.Record:
		return s.record(t, m)
	case *ir.Table:
		rows := lo.Map(t.Rows, func(r *ir.Record, _ int) *ir.Record { return s.record(r, m) })
		return &ir.Table{Loc: t.Loc, Schema: t.Schema, Rows: rows}
	case *ir.Proj:
		return &ir.Proj{Loc: t.Loc, Target: s.term(t.Target, m), Labels: t.Labels}
	case *ir.Mem:
		return &ir.Mem{Loc: t.Loc, Target: s.term(t.Target, m), Label: t.Label}
	case *ir.SelectFromWhere:
		from := s.term(t.From, m)
		alias, where, proj := s.underRow(t.As, t.Where, t.Projection, m)
		return &ir.SelectFromWhere{Loc: t.Loc, Projection: proj, From: from, Where: where, As: alias}
	case *ir.Join:
		left := s.term(t.Left, m)
		right := s.term(t.Right, m)
		alias, on, proj := s.underRow(t.As, t.On, t.Projection, m)
		return &ir.Join{Loc: t.Loc, Left: left, Right: right, On: on, Projection: proj, As: alias}
	case *ir.Union:
		return &ir.Union{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	case *ir.Intersect:
		return &ir.Intersect{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	case *ir.Except:
		return &ir.Except{Loc: t.Loc, Left: s.term(t.Left, m), Right: s.term(t.Right, m)}
	default:
		return t
	}
}

func (s *substituter) terms(ts []ir.Term, m Mapping) []ir.Term {
	return lo.Map(ts, func(t ir.Term, _ int) ir.Term { return s.term(t, m) })
}

func (s *substituter) record(r *ir.Record, m Mapping) *ir.Record {
	fields := lo.Map(r.Fields, func(f ir.Field, _ int) ir.Field {
		return ir.Field{Label: f.Label, Value: s.term(f.Value, m)}
	})
	return &ir.Record{Loc: r.Loc, Fields: fields}
}

func (s *substituter) fields(fs []ir.Field, m Mapping) []ir.Field {
	if fs == nil {
		return nil
	}
	return lo.Map(fs, func(f ir.Field, _ int) ir.Field {
		return ir.Field{Label: f.Label, Value: s.term(f.Value, m)}
	})
}

// underRow substitutes into a row scope: the predicate and projection of a
// SelectFromWhere or Join, where alias (if any) is bound.
func (s *substituter) underRow(alias string, pred ir.Term, proj []ir.Field, m Mapping) (string, ir.Term, []ir.Field) {
	if alias == "" {
		var p ir.Term
		if pred != nil {
			p = s.term(pred, m)
		}
		return alias, p, s.fields(proj, m)
	}

	// Treat predicate and projection as one body so a rename of the alias
	// is applied consistently to both.
	body := &ir.Comma{Items: []ir.Term{predOrUnit(pred)}}
	for _, f := range proj {
		body.Items = append(body.Items, f.Value)
	}
	names, renamed := s.under([]string{alias}, body, m)
	items := renamed.(*ir.Comma).Items

	var p ir.Term
	if pred != nil {
		p = items[0]
	}
	var fs []ir.Field
	if proj != nil {
		fs = make([]ir.Field, len(proj))
		for i, f := range proj {
			fs[i] = ir.Field{Label: f.Label, Value: items[i+1]}
		}
	}
	return names[0], p, fs
}

func predOrUnit(t ir.Term) ir.Term {
	if t == nil {
		return &ir.Unit{}
	}
	return t
}

// under substitutes m into body, which sits beneath binders. It returns the
// (possibly renamed) binders and the new body.
func (s *substituter) under(binders []string, body ir.Term, m Mapping) ([]string, ir.Term) {
	inner := make(Mapping, len(m))
	for k, v := range m {
		if !lo.Contains(binders, k) {
			inner[k] = v
		}
	}

	bodyFree := FreeVars(body)
	relevant := make(Mapping, len(inner))
	for k, v := range inner {
		if bodyFree[k] {
			relevant[k] = v
		}
	}
	if len(relevant) == 0 {
		return binders, body
	}

	replFree := make(map[string]bool)
	for _, v := range relevant {
		for name := range FreeVars(v) {
			replFree[name] = true
		}
	}

	out := make([]string, len(binders))
	copy(out, binders)
	renames := make(Mapping)
	for i, b := range binders {
		if !replFree[b] {
			continue
		}
		fresh := s.fresh(b, func(name string) bool {
			return replFree[name] || bodyFree[name] || inner[name] != nil || lo.Contains(out, name)
		})
		out[i] = fresh
		renames[b] = &ir.Var{Name: fresh}
	}
	if len(renames) > 0 {
		body = s.term(body, renames)
	}
	return out, s.term(body, relevant)
}

// fresh picks base', base'', ... until the name is neither in use nor
// already handed out by this substitution.
func (s *substituter) fresh(base string, inUse func(string) bool) string {
	name := base
	for {
		name += "'"
		if !inUse(name) && !s.taken[name] {
			s.taken[name] = true
			return name
		}
	}
}
