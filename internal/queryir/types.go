package queryir

// Statement is a store statement.
//
// This is a sealed interface - only types in this package implement it.
type Statement interface {
	statementNode()
}

// Predicate is a row filter.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// CreateTable creates a table with untyped columns.
type CreateTable struct {
	Table       string
	Columns     []string
	IfNotExists bool
}

// DropTable removes a table.
type DropTable struct {
	Table    string
	IfExists bool
}

// Insert adds one row. Values line up with Columns.
type Insert struct {
	Table   string
	Columns []string
	Values  []any
}

// Select reads columns from a table.
//
// Rows always come back in a deterministic order: OrderBy when given,
// insertion order otherwise.
type Select struct {
	From    string
	Columns []string
	Filter  Predicate
	OrderBy []string
}

// Delete removes the rows matching Filter, or every row when Filter is nil.
type Delete struct {
	From   string
	Filter Predicate
}

// Equals matches rows whose column equals a literal value.
type Equals struct {
	Column string
	Value  any
}

// And matches rows matching every predicate.
type And struct {
	Predicates []Predicate
}

func (*CreateTable) statementNode() {}
func (*DropTable) statementNode()   {}
func (*Insert) statementNode()      {}
func (*Select) statementNode()      {}
func (*Delete) statementNode()      {}

func (*Equals) predicateNode() {}
func (*And) predicateNode()    {}
