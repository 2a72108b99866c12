package engine

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/subst"
)

// Every table operator is built from three primitives: product,
// selectRows and projectRows. Row-scoped expressions (predicates and
// projection expressions) see each column of the current row as a
// variable of the same name and, when an alias is given, the whole row
// under the alias.

func (e *Evaluator) evalRecord(t *ir.Record) (ir.Term, error) {
	if ir.IsValue(t) {
		return t, nil
	}
	fields := make([]ir.Field, len(t.Fields))
	for i, f := range t.Fields {
		v, err := e.value(f.Value)
		if err != nil {
			return nil, err
		}
		fields[i] = ir.F(f.Label, v)
	}
	return &ir.Record{Loc: t.Loc, Fields: fields}, nil
}

func (e *Evaluator) evalTable(t *ir.Table) (ir.Term, error) {
	out := t
	if !ir.IsValue(t) {
		rows := make([]*ir.Record, len(t.Rows))
		for i, r := range t.Rows {
			v, err := e.evalRecord(r)
			if err != nil {
				return nil, err
			}
			rows[i] = v.(*ir.Record)
		}
		out = &ir.Table{Loc: t.Loc, Schema: t.Schema, Rows: rows}
	}
	if err := ir.Conforms(out); err != nil {
		return nil, typeMismatch(t, "table does not conform to its schema: %v", err)
	}
	return out, nil
}

func (e *Evaluator) evalMem(t *ir.Mem) (ir.Term, error) {
	target, err := e.value(t.Target)
	if err != nil {
		return nil, err
	}
	return mem(t, target)
}

func (e *Evaluator) evalProj(t *ir.Proj) (ir.Term, error) {
	target, err := e.value(t.Target)
	if err != nil {
		return nil, err
	}
	return proj(t, target)
}

func (e *Evaluator) evalSelect(t *ir.SelectFromWhere) (ir.Term, error) {
	src, err := e.table(t.From, "select")
	if err != nil {
		return nil, err
	}
	return e.selectFromWhere(t, src)
}

func (e *Evaluator) evalJoin(t *ir.Join) (ir.Term, error) {
	l, err := e.table(t.Left, "join")
	if err != nil {
		return nil, err
	}
	r, err := e.table(t.Right, "join")
	if err != nil {
		return nil, err
	}
	return e.join(t, l, r)
}

func (e *Evaluator) evalUnion(t *ir.Union) (ir.Term, error) {
	l, r, err := e.tables(t.Left, t.Right, "union")
	if err != nil {
		return nil, err
	}
	return union(t, l, r)
}

func (e *Evaluator) evalIntersect(t *ir.Intersect) (ir.Term, error) {
	l, r, err := e.tables(t.Left, t.Right, "intersect")
	if err != nil {
		return nil, err
	}
	return intersect(t, l, r)
}

func (e *Evaluator) evalExcept(t *ir.Except) (ir.Term, error) {
	l, r, err := e.tables(t.Left, t.Right, "except")
	if err != nil {
		return nil, err
	}
	return except(t, l, r)
}

// table evaluates t and requires a table.
func (e *Evaluator) table(t ir.Term, what string) (*ir.Table, error) {
	v, err := e.value(t)
	if err != nil {
		return nil, err
	}
	return asTable(t, v, what)
}

// tables evaluates both operands before checking either.
func (e *Evaluator) tables(left, right ir.Term, what string) (*ir.Table, *ir.Table, error) {
	lv, err := e.value(left)
	if err != nil {
		return nil, nil, err
	}
	rv, err := e.value(right)
	if err != nil {
		return nil, nil, err
	}
	l, err := asTable(left, lv, what)
	if err != nil {
		return nil, nil, err
	}
	r, err := asTable(right, rv, what)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func asTable(at, v ir.Term, what string) (*ir.Table, error) {
	tbl, ok := v.(*ir.Table)
	if !ok {
		return nil, typeMismatch(at, "%s expects a table, got %s", what, describe(v))
	}
	return tbl, nil
}

func (e *Evaluator) selectFromWhere(t *ir.SelectFromWhere, src *ir.Table) (*ir.Table, error) {
	kept, err := e.selectRows(t.Where, t.As, src)
	if err != nil {
		return nil, err
	}
	return e.projectRows(t, t.Projection, t.As, kept)
}

func (e *Evaluator) join(t *ir.Join, l, r *ir.Table) (*ir.Table, error) {
	p, err := product(t, l, r)
	if err != nil {
		return nil, err
	}
	kept, err := e.selectRows(t.On, t.As, p)
	if err != nil {
		return nil, err
	}
	return e.projectRows(t, t.Projection, t.As, kept)
}

// product pairs every row of l with every row of r. Column names must
// not collide.
func product(at ir.Term, l, r *ir.Table) (*ir.Table, error) {
	if shared := lo.Intersect(l.Schema, r.Schema); len(shared) > 0 {
		return nil, typeMismatch(at, "both tables have column %s", strings.Join(shared, ", "))
	}
	schema := append(append(slices.Grow([]string(nil), len(l.Schema)+len(r.Schema)), l.Schema...), r.Schema...)
	rows := make([]*ir.Record, 0, len(l.Rows)*len(r.Rows))
	for _, lr := range l.Rows {
		for _, rr := range r.Rows {
			rows = append(rows, &ir.Record{Fields: append(append(slices.Grow([]ir.Field(nil), len(lr.Fields)+len(rr.Fields)), lr.Fields...), rr.Fields...)})
		}
	}
	return &ir.Table{Schema: schema, Rows: rows}, nil
}

// selectRows keeps the rows for which pred holds. A nil pred keeps all.
func (e *Evaluator) selectRows(pred ir.Term, alias string, tbl *ir.Table) (*ir.Table, error) {
	if pred == nil {
		return tbl, nil
	}
	rows := make([]*ir.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		v, err := e.rowValue(pred, row, alias)
		if err != nil {
			return nil, err
		}
		keep, err := asBool(pred, v, "where")
		if err != nil {
			return nil, err
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return &ir.Table{Schema: tbl.Schema, Rows: rows}, nil
}

// projectRows builds one output row per input row, evaluating each
// projection expression against the row. An empty projection keeps
// every column.
func (e *Evaluator) projectRows(at ir.Term, fields []ir.Field, alias string, tbl *ir.Table) (*ir.Table, error) {
	if len(fields) == 0 {
		return tbl, nil
	}
	labels := lo.Map(fields, func(f ir.Field, _ int) string { return f.Label })
	if dups := lo.FindDuplicates(labels); len(dups) > 0 {
		return nil, structural(at, "projection repeats label %s", strings.Join(dups, ", "))
	}

	rows := make([]*ir.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out := make([]ir.Field, len(fields))
		for i, f := range fields {
			v, err := e.rowValue(f.Value, row, alias)
			if err != nil {
				return nil, err
			}
			out[i] = ir.F(f.Label, v)
		}
		rows = append(rows, &ir.Record{Fields: out})
	}
	return &ir.Table{Schema: labels, Rows: rows}, nil
}

// rowValue evaluates expr with the row's bindings substituted in. A name
// left free afterwards is a column the row does not have.
func (e *Evaluator) rowValue(expr ir.Term, row *ir.Record, alias string) (ir.Term, error) {
	m := make(subst.Mapping, len(row.Fields)+1)
	for _, f := range row.Fields {
		m[f.Label] = f.Value
	}
	if alias != "" {
		m[alias] = row
	}
	bound := subst.Subst(expr, m)
	if free := subst.FreeVars(bound); len(free) > 0 {
		names := lo.Keys(free)
		slices.Sort(names)
		return nil, structural(expr, "row has no column %s", strings.Join(names, ", "))
	}
	return e.value(bound)
}

// mem reads one field of a record, or one column of a table as a
// single-column table.
func mem(at *ir.Mem, target ir.Term) (ir.Term, error) {
	switch v := target.(type) {
	case *ir.Record:
		field, ok := v.Get(at.Label)
		if !ok {
			return nil, structural(at, "record has no field %s", at.Label)
		}
		return field, nil
	case *ir.Table:
		return columns(at, v, []string{at.Label})
	default:
		return nil, typeMismatch(at, "member access expects a record or a table, got %s", describe(target))
	}
}

// proj keeps the listed labels, in list order, of a record or a table.
func proj(at *ir.Proj, target ir.Term) (ir.Term, error) {
	if dups := lo.FindDuplicates(at.Labels); len(dups) > 0 {
		return nil, structural(at, "projection repeats label %s", strings.Join(dups, ", "))
	}
	switch v := target.(type) {
	case *ir.Record:
		return subRecord(at, v, at.Labels)
	case *ir.Table:
		return columns(at, v, at.Labels)
	default:
		return nil, typeMismatch(at, "projection expects a record or a table, got %s", describe(target))
	}
}

func subRecord(at ir.Term, r *ir.Record, labels []string) (*ir.Record, error) {
	fields := make([]ir.Field, len(labels))
	for i, label := range labels {
		v, ok := r.Get(label)
		if !ok {
			return nil, structural(at, "record has no field %s", label)
		}
		fields[i] = ir.F(label, v)
	}
	return &ir.Record{Fields: fields}, nil
}

func columns(at ir.Term, t *ir.Table, labels []string) (*ir.Table, error) {
	for _, label := range labels {
		if !lo.Contains(t.Schema, label) {
			return nil, structural(at, "table has no column %s", label)
		}
	}
	rows := make([]*ir.Record, len(t.Rows))
	for i, r := range t.Rows {
		sub, err := subRecord(at, r, labels)
		if err != nil {
			return nil, err
		}
		rows[i] = sub
	}
	return &ir.Table{Schema: slices.Clone(labels), Rows: rows}, nil
}

func union(at ir.Term, l, r *ir.Table) (*ir.Table, error) {
	return setOp(at, "union", l, r, func(bool) bool { return true }, true)
}

func intersect(at ir.Term, l, r *ir.Table) (*ir.Table, error) {
	return setOp(at, "intersect", l, r, func(inRight bool) bool { return inRight }, false)
}

func except(at ir.Term, l, r *ir.Table) (*ir.Table, error) {
	return setOp(at, "except", l, r, func(inRight bool) bool { return !inRight }, false)
}

// setOp builds a fresh, duplicate-free table from the rows of l (and of r
// when withRight is set) that satisfy keep. Rows are identified by
// ir.RecordKey; the result keeps first-occurrence order and l's schema.
func setOp(at ir.Term, op string, l, r *ir.Table, keep func(inRight bool) bool, withRight bool) (*ir.Table, error) {
	if !ir.SameSchema(l.Schema, r.Schema) {
		return nil, typeMismatch(at, "%s needs tables with the same schema, got (%s) and (%s)",
			op, strings.Join(l.Schema, ", "), strings.Join(r.Schema, ", "))
	}
	lkeys, err := rowKeys(at, op, l)
	if err != nil {
		return nil, err
	}
	rkeys, err := rowKeys(at, op, r)
	if err != nil {
		return nil, err
	}
	inRight := lo.SliceToMap(rkeys, func(k string) (string, bool) { return k, true })

	out := &ir.Table{Schema: slices.Clone(l.Schema), Rows: []*ir.Record{}}
	seen := make(map[string]bool)
	add := func(row *ir.Record, key string) {
		if !seen[key] {
			seen[key] = true
			out.Rows = append(out.Rows, row)
		}
	}
	for i, row := range l.Rows {
		if keep(inRight[lkeys[i]]) {
			add(row, lkeys[i])
		}
	}
	if withRight {
		for i, row := range r.Rows {
			add(row, rkeys[i])
		}
	}
	return out, nil
}

func rowKeys(at ir.Term, op string, t *ir.Table) ([]string, error) {
	keys := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		key, err := ir.RecordKey(row)
		if err != nil {
			return nil, typeMismatch(at, "%s cannot compare rows: %v", op, err)
		}
		keys[i] = key
	}
	return keys, nil
}
