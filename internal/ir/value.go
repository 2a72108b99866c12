package ir

// IsValue reports whether t is in normal form.
//
// Values are True, False, Int, Str, Unit, Abs, Fn, and Records and Tables
// whose components are themselves values. Everything else is a redex, or a
// stuck term such as a free Var.
func IsValue(t Term) bool {
	switch t := t.(type) {
	case *True, *False, *Int, *Str, *Unit, *Abs, *Fn:
		return true
	case *Record:
		for _, f := range t.Fields {
			if !IsValue(f.Value) {
				return false
			}
		}
		return true
	case *Table:
		for _, r := range t.Rows {
			if !IsValue(r) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// NewBool returns True or False.
func NewBool(b bool) Term {
	if b {
		return &True{}
	}
	return &False{}
}

// NewInt creates an Int value.
func NewInt(n int64) *Int {
	return &Int{Value: n}
}

// NewStr creates a Str value.
func NewStr(s string) *Str {
	return &Str{Value: s}
}

// NewRecord creates a Record from fields, preserving their order.
func NewRecord(fields ...Field) *Record {
	return &Record{Fields: fields}
}

// F is a shorthand for Field.
// Example: NewRecord(F("name", NewStr("A")), F("dept", NewStr("X")))
func F(label string, value Term) Field {
	return Field{Label: label, Value: value}
}

// NewTable creates a Table with the given schema and rows.
func NewTable(schema []string, rows ...*Record) *Table {
	return &Table{Schema: schema, Rows: rows}
}

// AsBool reports the boolean carried by t, and whether t is a boolean at all.
func AsBool(t Term) (value bool, ok bool) {
	switch t.(type) {
	case *True:
		return true, true
	case *False:
		return false, true
	default:
		return false, false
	}
}

// KindName returns a short human-readable name of the term's kind,
// used in diagnostics.
func KindName(n Node) string {
	switch n.(type) {
	case *True, *False:
		return "boolean"
	case *Int:
		return "integer"
	case *Str:
		return "string"
	case *Unit:
		return "unit"
	case *Abs:
		return "abstraction"
	case *Fn:
		return "function"
	case *Record:
		return "record"
	case *Table:
		return "table"
	case *Var:
		return "variable"
	case *Ref:
		return "reference"
	case *Def:
		return "declaration"
	case Type:
		return "type"
	case nil:
		return "nothing"
	default:
		return "expression"
	}
}
