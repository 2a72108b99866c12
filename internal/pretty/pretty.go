// Package pretty renders terms and types in relcalc surface syntax.
//
// The evaluator uses it for print output and for the offending sub-term
// quoted in diagnostics. Output is single-line and deterministic.
package pretty

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/ir"
)

// Node formats a term or a type.
func Node(n ir.Node) string {
	switch n := n.(type) {
	case nil:
		return "<none>"
	case ir.Term:
		return Term(n)
	case ir.Type:
		return Type(n)
	default:
		return "<unknown>"
	}
}

// Term formats a term.
func Term(t ir.Term) string {
	var b strings.Builder
	writeTerm(&b, t)
	return b.String()
}

func writeTerm(b *strings.Builder, t ir.Term) {
	switch t := t.(type) {
	case nil:
		b.WriteString("<none>")
	case *ir.True:
		b.WriteString("true")
	case *ir.False:
		b.WriteString("false")
	case *ir.Int:
		b.WriteString(strconv.FormatInt(t.Value, 10))
	case *ir.Str:
		b.WriteString(strconv.Quote(t.Value))
	case *ir.Unit:
		b.WriteString("unit")
	case *ir.Var:
		b.WriteString(t.Name)
	case *ir.Ref:
		b.WriteString(t.Name)
	case *ir.If:
		b.WriteString("if ")
		writeTerm(b, t.Cond)
		b.WriteString(" then ")
		writeTerm(b, t.Then)
		b.WriteString(" else ")
		writeTerm(b, t.Else)
	case *ir.Succ:
		prefix(b, "succ", t.Arg)
	case *ir.Pred:
		prefix(b, "pred", t.Arg)
	case *ir.Iszero:
		prefix(b, "iszero", t.Arg)
	case *ir.Not:
		prefix(b, "not", t.Arg)
	case *ir.And:
		infix(b, t.Left, "and", t.Right)
	case *ir.Or:
		infix(b, t.Left, "or", t.Right)
	case *ir.Equals:
		infix(b, t.Left, "==", t.Right)
	case *ir.Less:
		infix(b, t.Left, "<", t.Right)
	case *ir.Abs:
		b.WriteString(`\`)
		b.WriteString(t.Param)
		if t.ParamType != nil {
			b.WriteString(":")
			b.WriteString(Type(t.ParamType))
		}
		b.WriteString(". ")
		writeTerm(b, t.Body)
	case *ir.App:
		writeAtom(b, t.Fn)
		b.WriteByte(' ')
		writeAtom(b, t.Arg)
	case *ir.Fn:
		b.WriteString("fn(")
		b.WriteString(strings.Join(lo.Map(t.Params, func(p ir.Param, _ int) string {
			if p.Type == nil {
				return p.Name
			}
			return p.Name + ": " + Type(p.Type)
		}), ", "))
		b.WriteString(") => ")
		writeTerm(b, t.Body)
	case *ir.Call:
		writeAtom(b, t.Fn)
		b.WriteByte('(')
		writeList(b, t.Args)
		b.WriteByte(')')
	case *ir.Def:
		b.WriteString("def ")
		b.WriteString(t.Name)
		b.WriteString(" = ")
		b.WriteString(Node(t.Value))
	case *ir.Print:
		b.WriteString("print ")
		b.WriteString(Node(t.Expr))
	case *ir.Prog:
		for i, s := range t.Stmts {
			if i > 0 {
				b.WriteString("; ")
			}
			writeTerm(b, s)
		}
	case *ir.Comma:
		writeList(b, t.Items)
	case *ir.Record:
		writeRecord(b, t)
	case *ir.Table:
		b.WriteString("table(")
		b.WriteString(strings.Join(t.Schema, ", "))
		b.WriteString(") [")
		for i, r := range t.Rows {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRecord(b, r)
		}
		b.WriteByte(']')
	case *ir.Proj:
		writeAtom(b, t.Target)
		b.WriteString(".(")
		b.WriteString(strings.Join(t.Labels, ", "))
		b.WriteByte(')')
	case *ir.Mem:
		writeAtom(b, t.Target)
		b.WriteByte('.')
		b.WriteString(t.Label)
	case *ir.SelectFromWhere:
		b.WriteString("select ")
		writeProjection(b, t.Projection)
		b.WriteString(" from ")
		writeAtom(b, t.From)
		if t.As != "" {
			b.WriteString(" as ")
			b.WriteString(t.As)
		}
		if t.Where != nil {
			b.WriteString(" where ")
			writeTerm(b, t.Where)
		}
	case *ir.Join:
		b.WriteString("join ")
		writeAtom(b, t.Left)
		b.WriteString(", ")
		writeAtom(b, t.Right)
		if t.As != "" {
			b.WriteString(" as ")
			b.WriteString(t.As)
		}
		if t.On != nil {
			b.WriteString(" on ")
			writeTerm(b, t.On)
		}
		b.WriteString(" select ")
		writeProjection(b, t.Projection)
	case *ir.Union:
		infix(b, t.Left, "union", t.Right)
	case *ir.Intersect:
		infix(b, t.Left, "intersect", t.Right)
	case *ir.Except:
		infix(b, t.Left, "except", t.Right)
	default:
		b.WriteString("<unknown>")
	}
}

func prefix(b *strings.Builder, op string, arg ir.Term) {
	b.WriteString(op)
	b.WriteByte(' ')
	writeAtom(b, arg)
}

func infix(b *strings.Builder, left ir.Term, op string, right ir.Term) {
	writeAtom(b, left)
	b.WriteByte(' ')
	b.WriteString(op)
	b.WriteByte(' ')
	writeAtom(b, right)
}

func writeList(b *strings.Builder, ts []ir.Term) {
	for i, t := range ts {
		if i > 0 {
			b.WriteString(", ")
		}
		writeTerm(b, t)
	}
}

func writeRecord(b *strings.Builder, r *ir.Record) {
	b.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Label)
		b.WriteString(" = ")
		writeTerm(b, f.Value)
	}
	b.WriteByte('}')
}

func writeProjection(b *strings.Builder, fields []ir.Field) {
	if len(fields) == 0 {
		b.WriteByte('*')
		return
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Label)
		b.WriteString(" = ")
		writeTerm(b, f.Value)
	}
}

// writeAtom parenthesizes anything that is not syntactically atomic.
func writeAtom(b *strings.Builder, t ir.Term) {
	if isAtomic(t) {
		writeTerm(b, t)
		return
	}
	b.WriteByte('(')
	writeTerm(b, t)
	b.WriteByte(')')
}

func isAtomic(t ir.Term) bool {
	switch t.(type) {
	case nil, *ir.True, *ir.False, *ir.Int, *ir.Str, *ir.Unit, *ir.Var, *ir.Ref,
		*ir.Record, *ir.Table, *ir.Call, *ir.Mem, *ir.Proj:
		return true
	default:
		return false
	}
}

// Type formats a type.
func Type(t ir.Type) string {
	switch t := t.(type) {
	case nil:
		return "<none>"
	case *ir.BoolType:
		return "Bool"
	case *ir.NatType:
		return "Nat"
	case *ir.StrType:
		return "Str"
	case *ir.UnitType:
		return "Unit"
	case *ir.NamedType:
		return t.Name
	case *ir.ArrowType:
		from := Type(t.From)
		if _, ok := t.From.(*ir.ArrowType); ok {
			from = "(" + from + ")"
		}
		return from + " -> " + Type(t.To)
	case *ir.FnType:
		params := lo.Map(t.Params, func(p ir.Type, _ int) string { return Type(p) })
		return "(" + strings.Join(params, ", ") + ") -> " + Type(t.Result)
	case *ir.RecordType:
		return "{" + fieldTypes(t.Fields) + "}"
	case *ir.TableType:
		return "Table(" + fieldTypes(t.Columns) + ")"
	default:
		return "<unknown type>"
	}
}

func fieldTypes(fs []ir.FieldType) string {
	return strings.Join(lo.Map(fs, func(f ir.FieldType, _ int) string {
		return f.Label + ": " + Type(f.Type)
	}), ", ")
}
