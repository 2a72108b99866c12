package ir

// Type is a sealed interface over type expressions. Types are never
// evaluated; they appear as declaration values and print arguments.
type Type interface {
	Node
	typ()
}

// BoolType is Bool.
type BoolType struct{ Loc }

// NatType is Nat.
type NatType struct{ Loc }

// StrType is Str.
type StrType struct{ Loc }

// UnitType is Unit.
type UnitType struct{ Loc }

// ArrowType is From -> To, the type of an Abs.
type ArrowType struct {
	Loc
	From Type
	To   Type
}

// FnType is (Params...) -> Result, the type of a Fn.
type FnType struct {
	Loc
	Params []Type
	Result Type
}

// FieldType is a labelled component of a record or table type.
type FieldType struct {
	Label string
	Type  Type
}

// RecordType is {l1: T1, ...}.
type RecordType struct {
	Loc
	Fields []FieldType
}

// TableType is Table(c1: T1, ...).
type TableType struct {
	Loc
	Columns []FieldType
}

// NamedType refers to a type declared with Def.
type NamedType struct {
	Loc
	Name string
}

func (*BoolType) node()   {}
func (*NatType) node()    {}
func (*StrType) node()    {}
func (*UnitType) node()   {}
func (*ArrowType) node()  {}
func (*FnType) node()     {}
func (*RecordType) node() {}
func (*TableType) node()  {}
func (*NamedType) node()  {}

func (*BoolType) typ()   {}
func (*NatType) typ()    {}
func (*StrType) typ()    {}
func (*UnitType) typ()   {}
func (*ArrowType) typ()  {}
func (*FnType) typ()     {}
func (*RecordType) typ() {}
func (*TableType) typ()  {}
func (*NamedType) typ()  {}
