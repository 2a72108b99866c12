package queryir

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Validate checks the shape of a statement: names are present, column
// lists have no duplicates, inserts supply one value per column, and
// literals are of a supported Go type.
//
// Validate is a pure function with no side effects. It returns every
// problem found, joined.
func Validate(stmt Statement) error {
	v := &validator{}
	v.statement(stmt)
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) addf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) statement(stmt Statement) {
	switch s := stmt.(type) {
	case nil:
		v.addf("nil statement")
	case *CreateTable:
		v.table(s.Table)
		v.columns("create", s.Columns)
	case *DropTable:
		v.table(s.Table)
	case *Insert:
		v.table(s.Table)
		v.columns("insert", s.Columns)
		if len(s.Values) != len(s.Columns) {
			v.addf("insert into %s: %d values for %d columns", s.Table, len(s.Values), len(s.Columns))
		}
		for _, val := range s.Values {
			v.literal(val)
		}
	case *Select:
		v.table(s.From)
		v.columns("select", s.Columns)
		v.predicate(s.Filter)
	case *Delete:
		v.table(s.From)
		v.predicate(s.Filter)
	default:
		v.addf("unsupported statement type %T", stmt)
	}
}

func (v *validator) table(name string) {
	if name == "" {
		v.addf("statement has no table name")
	}
}

func (v *validator) columns(op string, cols []string) {
	if lo.Contains(cols, "") {
		v.addf("%s: empty column name", op)
	}
	for _, dup := range lo.FindDuplicates(cols) {
		v.addf("%s: duplicate column %q", op, dup)
	}
}

func (v *validator) predicate(p Predicate) {
	switch p := p.(type) {
	case nil:
	case *Equals:
		if p.Column == "" {
			v.addf("equals: empty column name")
		}
		v.literal(p.Value)
	case *And:
		for _, sub := range p.Predicates {
			if sub == nil {
				v.addf("and: nil predicate")
				continue
			}
			v.predicate(sub)
		}
	default:
		v.addf("unsupported predicate type %T", p)
	}
}

func (v *validator) literal(val any) {
	switch val.(type) {
	case nil, string, int64, bool:
	default:
		v.addf("unsupported literal type %T", val)
	}
}
