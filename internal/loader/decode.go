package loader

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/ir"
)

// decoder turns the document tree into ir nodes.
type decoder struct {
	ctx    context.Context
	tables TableSource
	defs   []*ir.Def
}

// kindOf returns the single key of a term map and its argument.
func kindOf(n *node) (string, *node, error) {
	if n.kind != mapNode {
		return "", nil, errorf(ErrCodeMalformed, n.loc, "expected a term, got a %s", n.kind)
	}
	if len(n.keys) != 1 {
		return "", nil, errorf(ErrCodeMalformed, n.loc, "a term map has exactly one key naming its kind, got %d", len(n.keys))
	}
	return n.keys[0], n.vals[0], nil
}

func (d *decoder) term(n *node) (ir.Term, error) {
	loc := n.loc
	switch n.kind {
	case intNode:
		return &ir.Int{Loc: loc, Value: n.i}, nil
	case boolNode:
		if n.b {
			return &ir.True{Loc: loc}, nil
		}
		return &ir.False{Loc: loc}, nil
	case strNode:
		return &ir.Str{Loc: loc, Value: n.s}, nil
	case nullNode:
		return nil, errorf(ErrCodeMalformed, loc, "null is not a term; write {unit: null} for the unit value")
	case listNode:
		return nil, errorf(ErrCodeMalformed, loc, "a list is not a term; use prog or comma for sequences")
	}

	kind, arg, err := kindOf(n)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "unit":
		return &ir.Unit{Loc: loc}, nil
	case "var":
		name, err := d.name(arg, kind)
		if err != nil {
			return nil, err
		}
		return &ir.Var{Loc: loc, Name: name}, nil
	case "ref":
		name, err := d.name(arg, kind)
		if err != nil {
			return nil, err
		}
		return &ir.Ref{Loc: loc, Name: name}, nil
	case "if":
		ts, err := d.terms(arg, kind, 3)
		if err != nil {
			return nil, err
		}
		return &ir.If{Loc: loc, Cond: ts[0], Then: ts[1], Else: ts[2]}, nil
	case "succ", "pred", "iszero", "not":
		t, err := d.term(arg)
		if err != nil {
			return nil, err
		}
		return unary(kind, loc, t), nil
	case "and", "or", "equals", "less", "app", "union", "intersect", "except":
		ts, err := d.terms(arg, kind, 2)
		if err != nil {
			return nil, err
		}
		return binary(kind, loc, ts[0], ts[1]), nil
	case "abs":
		return d.abs(arg, loc)
	case "fn":
		return d.fn(arg, loc)
	case "call":
		return d.call(arg, loc)
	case "def":
		return d.def(arg, loc)
	case "print":
		return d.print(arg, loc)
	case "prog":
		ts, err := d.terms(arg, kind, -1)
		if err != nil {
			return nil, err
		}
		return &ir.Prog{Loc: loc, Stmts: ts}, nil
	case "comma":
		ts, err := d.terms(arg, kind, -1)
		if err != nil {
			return nil, err
		}
		return &ir.Comma{Loc: loc, Items: ts}, nil
	case "record":
		fields, err := d.fieldMap(arg, kind)
		if err != nil {
			return nil, err
		}
		return &ir.Record{Loc: loc, Fields: fields}, nil
	case "table":
		return d.table(arg, loc)
	case "load":
		return d.load(arg, loc)
	case "mem":
		return d.mem(arg, loc)
	case "proj":
		return d.proj(arg, loc)
	case "select":
		return d.selectFromWhere(arg, loc)
	case "join":
		return d.join(arg, loc)
	case "type":
		return nil, errorf(ErrCodeBadType, loc, "a type is not a term here; types appear only in def, print and annotations")
	default:
		return nil, errorf(ErrCodeUnknownKind, loc, "unknown term kind %q", kind)
	}
}

func unary(kind string, loc ir.Loc, t ir.Term) ir.Term {
	switch kind {
	case "succ":
		return &ir.Succ{Loc: loc, Arg: t}
	case "pred":
		return &ir.Pred{Loc: loc, Arg: t}
	case "iszero":
		return &ir.Iszero{Loc: loc, Arg: t}
	default:
		return &ir.Not{Loc: loc, Arg: t}
	}
}

func binary(kind string, loc ir.Loc, l, r ir.Term) ir.Term {
	switch kind {
	case "and":
		return &ir.And{Loc: loc, Left: l, Right: r}
	case "or":
		return &ir.Or{Loc: loc, Left: l, Right: r}
	case "equals":
		return &ir.Equals{Loc: loc, Left: l, Right: r}
	case "less":
		return &ir.Less{Loc: loc, Left: l, Right: r}
	case "app":
		return &ir.App{Loc: loc, Fn: l, Arg: r}
	case "union":
		return &ir.Union{Loc: loc, Left: l, Right: r}
	case "intersect":
		return &ir.Intersect{Loc: loc, Left: l, Right: r}
	default:
		return &ir.Except{Loc: loc, Left: l, Right: r}
	}
}

// name reads a non-empty string argument.
func (d *decoder) name(n *node, kind string) (string, error) {
	if n.kind != strNode || n.s == "" {
		return "", errorf(ErrCodeMalformed, n.loc, "%s expects a name, got a %s", kind, n.kind)
	}
	return n.s, nil
}

// list reads a list argument; want < 0 accepts any length.
func (d *decoder) list(n *node, kind string, want int) ([]*node, error) {
	if n.kind != listNode {
		return nil, errorf(ErrCodeMalformed, n.loc, "%s expects a list, got a %s", kind, n.kind)
	}
	if want >= 0 && len(n.items) != want {
		return nil, errorf(ErrCodeMalformed, n.loc, "%s expects %d elements, got %d", kind, want, len(n.items))
	}
	return n.items, nil
}

func (d *decoder) terms(n *node, kind string, want int) ([]ir.Term, error) {
	items, err := d.list(n, kind, want)
	if err != nil {
		return nil, err
	}
	ts := make([]ir.Term, len(items))
	for i, item := range items {
		if ts[i], err = d.term(item); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func (d *decoder) names(n *node, kind string) ([]string, error) {
	items, err := d.list(n, kind, -1)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		if out[i], err = d.name(item, kind); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// object checks that n is a map whose keys are all allowed and whose
// required keys are present.
func (d *decoder) object(n *node, kind string, required []string, optional ...string) error {
	if n.kind != mapNode {
		return errorf(ErrCodeMalformed, n.loc, "%s expects a map, got a %s", kind, n.kind)
	}
	for i, k := range n.keys {
		if !lo.Contains(required, k) && !lo.Contains(optional, k) {
			return errorf(ErrCodeMalformed, n.vals[i].loc, "%s has unknown field %q", kind, k)
		}
	}
	for _, k := range required {
		if !n.has(k) {
			return errorf(ErrCodeMalformed, n.loc, "%s is missing field %q", kind, k)
		}
	}
	return nil
}

// optTerm decodes an optional field, returning nil when absent.
func (d *decoder) optTerm(n *node, key string) (ir.Term, error) {
	v, ok := n.get(key)
	if !ok {
		return nil, nil
	}
	return d.term(v)
}

func (d *decoder) optName(n *node, key, kind string) (string, error) {
	v, ok := n.get(key)
	if !ok {
		return "", nil
	}
	return d.name(v, kind+"."+key)
}

func (d *decoder) fieldMap(n *node, kind string) ([]ir.Field, error) {
	if n.kind != mapNode {
		return nil, errorf(ErrCodeMalformed, n.loc, "%s expects a map of labels, got a %s", kind, n.kind)
	}
	fields := make([]ir.Field, len(n.keys))
	for i, label := range n.keys {
		t, err := d.term(n.vals[i])
		if err != nil {
			return nil, err
		}
		fields[i] = ir.Field{Label: label, Value: t}
	}
	return fields, nil
}

func (d *decoder) abs(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "abs", []string{"param", "body"}, "type"); err != nil {
		return nil, err
	}
	param, err := d.optName(n, "param", "abs")
	if err != nil {
		return nil, err
	}
	body, err := d.optTerm(n, "body")
	if err != nil {
		return nil, err
	}
	abs := &ir.Abs{Loc: loc, Param: param, Body: body}
	if tn, ok := n.get("type"); ok {
		if abs.ParamType, err = d.typ(tn); err != nil {
			return nil, err
		}
	}
	return abs, nil
}

func (d *decoder) fn(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "fn", []string{"params", "body"}); err != nil {
		return nil, err
	}
	pn, _ := n.get("params")
	items, err := d.list(pn, "fn.params", -1)
	if err != nil {
		return nil, err
	}
	params := make([]ir.Param, len(items))
	for i, item := range items {
		if params[i], err = d.param(item); err != nil {
			return nil, err
		}
	}
	body, err := d.optTerm(n, "body")
	if err != nil {
		return nil, err
	}
	return &ir.Fn{Loc: loc, Params: params, Body: body}, nil
}

// param accepts a bare name or {name, type}.
func (d *decoder) param(n *node) (ir.Param, error) {
	if n.kind == strNode {
		name, err := d.name(n, "fn.params")
		return ir.Param{Name: name}, err
	}
	if err := d.object(n, "fn.params", []string{"name"}, "type"); err != nil {
		return ir.Param{}, err
	}
	name, err := d.optName(n, "name", "fn.params")
	if err != nil {
		return ir.Param{}, err
	}
	p := ir.Param{Name: name}
	if tn, ok := n.get("type"); ok {
		if p.Type, err = d.typ(tn); err != nil {
			return ir.Param{}, err
		}
	}
	return p, nil
}

func (d *decoder) call(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "call", []string{"fn"}, "args"); err != nil {
		return nil, err
	}
	target, err := d.optTerm(n, "fn")
	if err != nil {
		return nil, err
	}
	args := []ir.Term{}
	if an, ok := n.get("args"); ok {
		if args, err = d.terms(an, "call.args", -1); err != nil {
			return nil, err
		}
	}
	return &ir.Call{Loc: loc, Fn: target, Args: args}, nil
}

func (d *decoder) def(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "def", []string{"name"}, "value", "type"); err != nil {
		return nil, err
	}
	if n.has("value") == n.has("type") {
		return nil, errorf(ErrCodeMalformed, loc, "def needs exactly one of value or type")
	}
	name, err := d.optName(n, "name", "def")
	if err != nil {
		return nil, err
	}
	def := &ir.Def{Loc: loc, Name: name}
	if tn, ok := n.get("type"); ok {
		if def.Value, err = d.typ(tn); err != nil {
			return nil, err
		}
	} else {
		vn, _ := n.get("value")
		if def.Value, err = d.term(vn); err != nil {
			return nil, err
		}
	}
	d.defs = append(d.defs, def)
	return def, nil
}

func (d *decoder) print(n *node, loc ir.Loc) (ir.Term, error) {
	if n.kind == mapNode && len(n.keys) == 1 && n.keys[0] == "type" {
		t, err := d.typ(n.vals[0])
		if err != nil {
			return nil, err
		}
		return &ir.Print{Loc: loc, Expr: t}, nil
	}
	t, err := d.term(n)
	if err != nil {
		return nil, err
	}
	return &ir.Print{Loc: loc, Expr: t}, nil
}

func (d *decoder) table(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "table", []string{"schema"}, "rows"); err != nil {
		return nil, err
	}
	sn, _ := n.get("schema")
	schema, err := d.names(sn, "table.schema")
	if err != nil {
		return nil, err
	}
	tbl := &ir.Table{Loc: loc, Schema: schema, Rows: []*ir.Record{}}
	rn, ok := n.get("rows")
	if !ok {
		return tbl, nil
	}
	rows, err := d.list(rn, "table.rows", -1)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		r, err := d.row(row, schema)
		if err != nil {
			return nil, err
		}
		tbl.Rows = append(tbl.Rows, r)
	}
	return tbl, nil
}

// row accepts a positional list matching the schema, or a label map.
func (d *decoder) row(n *node, schema []string) (*ir.Record, error) {
	switch n.kind {
	case listNode:
		values, err := d.terms(n, "table row", len(schema))
		if err != nil {
			return nil, err
		}
		fields := make([]ir.Field, len(schema))
		for i, col := range schema {
			fields[i] = ir.Field{Label: col, Value: values[i]}
		}
		return &ir.Record{Loc: n.loc, Fields: fields}, nil
	case mapNode:
		fields, err := d.fieldMap(n, "table row")
		if err != nil {
			return nil, err
		}
		return &ir.Record{Loc: n.loc, Fields: fields}, nil
	default:
		return nil, errorf(ErrCodeMalformed, n.loc, "table row must be a list or a map, got a %s", n.kind)
	}
}

func (d *decoder) load(n *node, loc ir.Loc) (ir.Term, error) {
	name, err := d.name(n, "load")
	if err != nil {
		return nil, err
	}
	if d.tables == nil {
		return nil, errorf(ErrCodeTableSource, loc, "load %q: no table store configured", name)
	}
	tbl, err := d.tables.LoadTable(d.ctx, name)
	if err != nil {
		return nil, errorf(ErrCodeTableSource, loc, "load %q: %v", name, err)
	}
	tbl.Loc = loc
	return tbl, nil
}

func (d *decoder) mem(n *node, loc ir.Loc) (ir.Term, error) {
	items, err := d.list(n, "mem", 2)
	if err != nil {
		return nil, err
	}
	target, err := d.term(items[0])
	if err != nil {
		return nil, err
	}
	label, err := d.name(items[1], "mem")
	if err != nil {
		return nil, err
	}
	return &ir.Mem{Loc: loc, Target: target, Label: label}, nil
}

func (d *decoder) proj(n *node, loc ir.Loc) (ir.Term, error) {
	items, err := d.list(n, "proj", 2)
	if err != nil {
		return nil, err
	}
	target, err := d.term(items[0])
	if err != nil {
		return nil, err
	}
	labels, err := d.names(items[1], "proj")
	if err != nil {
		return nil, err
	}
	return &ir.Proj{Loc: loc, Target: target, Labels: labels}, nil
}

func (d *decoder) projection(n *node) ([]ir.Field, error) {
	pn, ok := n.get("project")
	if !ok {
		return nil, nil
	}
	return d.fieldMap(pn, "project")
}

func (d *decoder) selectFromWhere(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "select", []string{"from"}, "project", "where", "as"); err != nil {
		return nil, err
	}
	sel := &ir.SelectFromWhere{Loc: loc}
	var err error
	if sel.Projection, err = d.projection(n); err != nil {
		return nil, err
	}
	if sel.From, err = d.optTerm(n, "from"); err != nil {
		return nil, err
	}
	if sel.Where, err = d.optTerm(n, "where"); err != nil {
		return nil, err
	}
	if sel.As, err = d.optName(n, "as", "select"); err != nil {
		return nil, err
	}
	return sel, nil
}

func (d *decoder) join(n *node, loc ir.Loc) (ir.Term, error) {
	if err := d.object(n, "join", []string{"left", "right"}, "on", "project", "as"); err != nil {
		return nil, err
	}
	j := &ir.Join{Loc: loc}
	var err error
	if j.Left, err = d.optTerm(n, "left"); err != nil {
		return nil, err
	}
	if j.Right, err = d.optTerm(n, "right"); err != nil {
		return nil, err
	}
	if j.On, err = d.optTerm(n, "on"); err != nil {
		return nil, err
	}
	if j.Projection, err = d.projection(n); err != nil {
		return nil, err
	}
	if j.As, err = d.optName(n, "as", "join"); err != nil {
		return nil, err
	}
	return j, nil
}

// typ decodes a type expression: a base type name, or a single-key map
// with arrow, fn, record or table.
func (d *decoder) typ(n *node) (ir.Type, error) {
	loc := n.loc
	if n.kind == strNode {
		switch n.s {
		case "Bool":
			return &ir.BoolType{Loc: loc}, nil
		case "Nat":
			return &ir.NatType{Loc: loc}, nil
		case "Str":
			return &ir.StrType{Loc: loc}, nil
		case "Unit":
			return &ir.UnitType{Loc: loc}, nil
		case "":
			return nil, errorf(ErrCodeBadType, loc, "empty type name")
		default:
			return &ir.NamedType{Loc: loc, Name: n.s}, nil
		}
	}
	if n.kind != mapNode || len(n.keys) != 1 {
		return nil, errorf(ErrCodeBadType, loc, "expected a type name or a single-key type map, got a %s", n.kind)
	}

	kind, arg := n.keys[0], n.vals[0]
	switch kind {
	case "arrow":
		items, err := d.list(arg, "arrow", 2)
		if err != nil {
			return nil, err
		}
		from, err := d.typ(items[0])
		if err != nil {
			return nil, err
		}
		to, err := d.typ(items[1])
		if err != nil {
			return nil, err
		}
		return &ir.ArrowType{Loc: loc, From: from, To: to}, nil
	case "fn":
		if err := d.object(arg, "fn type", []string{"params", "result"}); err != nil {
			return nil, err
		}
		pn, _ := arg.get("params")
		items, err := d.list(pn, "fn type params", -1)
		if err != nil {
			return nil, err
		}
		params := make([]ir.Type, len(items))
		for i, item := range items {
			if params[i], err = d.typ(item); err != nil {
				return nil, err
			}
		}
		rn, _ := arg.get("result")
		result, err := d.typ(rn)
		if err != nil {
			return nil, err
		}
		return &ir.FnType{Loc: loc, Params: params, Result: result}, nil
	case "record", "table":
		fields, err := d.fieldTypes(arg, kind)
		if err != nil {
			return nil, err
		}
		if kind == "record" {
			return &ir.RecordType{Loc: loc, Fields: fields}, nil
		}
		return &ir.TableType{Loc: loc, Columns: fields}, nil
	default:
		return nil, errorf(ErrCodeBadType, loc, "unknown type kind %q", kind)
	}
}

func (d *decoder) fieldTypes(n *node, kind string) ([]ir.FieldType, error) {
	if n.kind != mapNode {
		return nil, errorf(ErrCodeBadType, n.loc, "%s type expects a map of labels, got a %s", kind, n.kind)
	}
	out := make([]ir.FieldType, len(n.keys))
	for i, label := range n.keys {
		t, err := d.typ(n.vals[i])
		if err != nil {
			return nil, err
		}
		out[i] = ir.FieldType{Label: label, Type: t}
	}
	return out, nil
}

// version checks an optional top-level version key.
func checkVersion(n *node) error {
	var v string
	switch n.kind {
	case strNode:
		v = n.s
	case intNode:
		v = strconv.FormatInt(n.i, 10)
	default:
		return errorf(ErrCodeVersion, n.loc, "version must be a string, got a %s", n.kind)
	}
	if v != ir.FormatVersion {
		return errorf(ErrCodeVersion, n.loc, "unsupported document version %q (supported: %q)", v, ir.FormatVersion)
	}
	return nil
}
