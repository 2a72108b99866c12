package ir

// Node is anything that can appear where the grammar accepts either a term
// or a type: the value of a Def and the argument of a Print.
//
// This is a sealed interface - only Term and Type implementations in this
// package satisfy it.
type Node interface {
	Pos() Loc
	node()
}

// Term is a sealed interface over every expression and statement kind.
//
// Term kinds:
//   - Values: True, False, Int, Str, Unit, Abs, Fn, Record, Table
//   - Scalar: If, Succ, Pred, Iszero, And, Or, Not, Equals, Less
//   - Functional: Var, App, Call
//   - Declarations: Ref, Def
//   - Sequencing: Print, Prog, Comma
//   - Relational: Proj, Mem, SelectFromWhere, Join, Union, Intersect, Except
type Term interface {
	Node
	term()
}

// True is the boolean value true.
type True struct{ Loc }

// False is the boolean value false.
type False struct{ Loc }

// Int is a natural number literal.
type Int struct {
	Loc
	Value int64
}

// Str is a string literal.
type Str struct {
	Loc
	Value string
}

// Unit is the sole value of the unit type.
type Unit struct{ Loc }

// Var references a parameter of an enclosing Abs or Fn, or a field of the
// row currently being filtered or projected.
type Var struct {
	Loc
	Name string
}

// If is "if Cond then Then else Else".
type If struct {
	Loc
	Cond Term
	Then Term
	Else Term
}

// Succ is "succ Arg".
type Succ struct {
	Loc
	Arg Term
}

// Pred is "pred Arg". The predecessor of zero is zero.
type Pred struct {
	Loc
	Arg Term
}

// Iszero is "iszero Arg".
type Iszero struct {
	Loc
	Arg Term
}

// Abs is a single-parameter lambda abstraction.
type Abs struct {
	Loc
	Param     string
	ParamType Type // optional annotation, not used by evaluation
	Body      Term
}

// App applies Fn (which must reduce to an Abs) to Arg.
type App struct {
	Loc
	Fn  Term
	Arg Term
}

// Param is one formal parameter of a Fn.
type Param struct {
	Name string
	Type Type // optional
}

// Fn is a multi-parameter function value.
type Fn struct {
	Loc
	Params []Param
	Body   Term
}

// ParamNames returns the parameter names in declaration order.
func (f *Fn) ParamNames() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

// Call applies Fn (which must reduce to a Fn) to Args.
type Call struct {
	Loc
	Fn   Term
	Args []Term
}

// Ref references a top-level declaration by name. The declaration itself
// lives in the declaration table; Ref only holds the lookup key.
type Ref struct {
	Loc
	Name string
}

// Def is a top-level declaration binding Name to a term or a type.
//
// Value is overwritten with its evaluated form the first time the
// declaration is evaluated. This is the only mutation of a term node.
type Def struct {
	Loc
	Name  string
	Value Node
}

// Print writes the formatted value of Expr (a term or a type).
type Print struct {
	Loc
	Expr Node
}

// Prog is a non-empty sequence of statements.
type Prog struct {
	Loc
	Stmts []Term
}

// Comma is a bare comma-separated list of terms.
type Comma struct {
	Loc
	Items []Term
}

// And is "Left and Right". Both operands are always evaluated.
type And struct {
	Loc
	Left  Term
	Right Term
}

// Or is "Left or Right". Both operands are always evaluated.
type Or struct {
	Loc
	Left  Term
	Right Term
}

// Not is "not Arg".
type Not struct {
	Loc
	Arg Term
}

// Equals is structural value equality.
type Equals struct {
	Loc
	Left  Term
	Right Term
}

// Less is "Left < Right".
type Less struct {
	Loc
	Left  Term
	Right Term
}

// Field is a labelled binding inside a Record or a projection list.
type Field struct {
	Label string
	Value Term
}

// Record is an ordered sequence of labelled fields.
type Record struct {
	Loc
	Fields []Field
}

// Labels returns the record's labels in order.
func (r *Record) Labels() []string {
	labels := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		labels[i] = f.Label
	}
	return labels
}

// Get returns the value bound to label.
func (r *Record) Get(label string) (Term, bool) {
	for _, f := range r.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return nil, false
}

// Table is a schema plus the records conforming to it.
type Table struct {
	Loc
	Schema []string
	Rows   []*Record
}

// Proj projects a list of labels out of a record or a table.
type Proj struct {
	Loc
	Target Term
	Labels []string
}

// Mem accesses a single member of a record or a single column of a table.
type Mem struct {
	Loc
	Target Term
	Label  string
}

// SelectFromWhere is "select Projection from From where Where".
//
// Within Where and Projection, each column of the current row is bound to a
// Var of the same name and, when As is set, the whole row is bound to As.
// A nil Where keeps every row; an empty Projection keeps every column.
type SelectFromWhere struct {
	Loc
	Projection []Field
	From       Term
	Where      Term
	As         string
}

// Join is the product of Left and Right filtered by On and projected by
// Projection. Row bindings follow the same rules as SelectFromWhere.
type Join struct {
	Loc
	Left       Term
	Right      Term
	On         Term
	Projection []Field
	As         string
}

// Union is the set union of two tables with the same schema.
type Union struct {
	Loc
	Left  Term
	Right Term
}

// Intersect is the set intersection of two tables with the same schema.
type Intersect struct {
	Loc
	Left  Term
	Right Term
}

// Except is the set difference Left minus Right.
type Except struct {
	Loc
	Left  Term
	Right Term
}

func (*True) node()            {}
func (*False) node()           {}
func (*Int) node()             {}
func (*Str) node()             {}
func (*Unit) node()            {}
func (*Var) node()             {}
func (*If) node()              {}
func (*Succ) node()            {}
func (*Pred) node()            {}
func (*Iszero) node()          {}
func (*Abs) node()             {}
func (*App) node()             {}
func (*Fn) node()              {}
func (*Call) node()            {}
func (*Ref) node()             {}
func (*Def) node()             {}
func (*Print) node()           {}
func (*Prog) node()            {}
func (*Comma) node()           {}
func (*And) node()             {}
func (*Or) node()              {}
func (*Not) node()             {}
func (*Equals) node()          {}
func (*Less) node()            {}
func (*Record) node()          {}
func (*Table) node()           {}
func (*Proj) node()            {}
func (*Mem) node()             {}
func (*SelectFromWhere) node() {}
func (*Join) node()            {}
func (*Union) node()           {}
func (*Intersect) node()       {}
func (*Except) node()          {}

func (*True) term()            {}
func (*False) term()           {}
func (*Int) term()             {}
func (*Str) term()             {}
func (*Unit) term()            {}
func (*Var) term()             {}
func (*If) term()              {}
func (*Succ) term()            {}
func (*Pred) term()            {}
func (*Iszero) term()          {}
func (*Abs) term()             {}
func (*App) term()             {}
func (*Fn) term()              {}
func (*Call) term()            {}
func (*Ref) term()             {}
func (*Def) term()             {}
func (*Print) term()           {}
func (*Prog) term()            {}
func (*Comma) term()           {}
func (*And) term()             {}
func (*Or) term()              {}
func (*Not) term()             {}
func (*Equals) term()          {}
func (*Less) term()            {}
func (*Record) term()          {}
func (*Table) term()           {}
func (*Proj) term()            {}
func (*Mem) term()             {}
func (*SelectFromWhere) term() {}
func (*Join) term()            {}
func (*Union) term()           {}
func (*Intersect) term()       {}
func (*Except) term()          {}
