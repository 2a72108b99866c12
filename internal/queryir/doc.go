// Package queryir describes the statements the table store issues, as
// plain data.
//
// The store never writes SQL text itself: it builds queryir statements and
// hands them to a backend compiler (internal/querysql for SQLite). Keeping
// the statement shapes here gives one place to check them and keeps
// identifier quoting and parameter binding in the backend.
//
// Statement and Predicate are sealed interfaces using the marker method
// pattern, so backends can switch exhaustively:
//
//	switch s := stmt.(type) {
//	case *CreateTable:
//	case *DropTable:
//	case *Insert:
//	case *Select:
//	case *Delete:
//	}
//
// Literal values are Go scalars: string, int64, bool, or nil. They are
// always bound as parameters, never spliced into statement text.
package queryir
