// Package querysql compiles queryir statements to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/queryir"
)

// Compile converts a statement to SQL text and its parameters.
//
// Identifiers are always double-quoted; literal values are always bound
// as ? parameters, never interpolated. Every SELECT carries an ORDER BY,
// falling back to rowid (insertion order).
func Compile(stmt queryir.Statement) (string, []any, error) {
	if err := queryir.Validate(stmt); err != nil {
		return "", nil, fmt.Errorf("invalid statement: %w", err)
	}

	switch s := stmt.(type) {
	case *queryir.CreateTable:
		return compileCreate(s), nil, nil
	case *queryir.DropTable:
		return compileDrop(s), nil, nil
	case *queryir.Insert:
		return compileInsert(s)
	case *queryir.Select:
		return compileSelect(s)
	case *queryir.Delete:
		return compileDelete(s)
	default:
		return "", nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// QuoteIdent quotes an SQLite identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) string {
	return strings.Join(lo.Map(names, func(n string, _ int) string { return QuoteIdent(n) }), ", ")
}

func compileCreate(s *queryir.CreateTable) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if s.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(QuoteIdent(s.Table))
	b.WriteString(" (")
	if len(s.Columns) == 0 {
		// SQLite tables need at least one column.
		b.WriteString(QuoteIdent("_unused"))
	} else {
		b.WriteString(quoteAll(s.Columns))
	}
	b.WriteString(")")
	return b.String()
}

func compileDrop(s *queryir.DropTable) string {
	if s.IfExists {
		return "DROP TABLE IF EXISTS " + QuoteIdent(s.Table)
	}
	return "DROP TABLE " + QuoteIdent(s.Table)
}

func compileInsert(s *queryir.Insert) (string, []any, error) {
	if len(s.Columns) == 0 {
		return "INSERT INTO " + QuoteIdent(s.Table) + " DEFAULT VALUES", nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(s.Table),
		quoteAll(s.Columns),
		placeholders)
	params := make([]any, len(s.Values))
	copy(params, s.Values)
	return sql, params, nil
}

func compileSelect(s *queryir.Select) (string, []any, error) {
	cols := "*"
	if len(s.Columns) > 0 {
		cols = quoteAll(s.Columns)
	}

	whereClause, params, err := compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}

	// Mandatory deterministic order.
	order := "rowid ASC"
	if len(s.OrderBy) > 0 {
		order = strings.Join(lo.Map(s.OrderBy, func(n string, _ int) string {
			return QuoteIdent(n) + " ASC"
		}), ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		cols,
		QuoteIdent(s.From),
		whereClause,
		order)
	return sql, params, nil
}

func compileDelete(s *queryir.Delete) (string, []any, error) {
	whereClause, params, err := compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + QuoteIdent(s.From) + whereClause, params, nil
}

func compileWhere(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, params, err := compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

func compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case *queryir.Equals:
		if pred.Value == nil {
			return QuoteIdent(pred.Column) + " IS NULL", nil, nil
		}
		return QuoteIdent(pred.Column) + " = ?", []any{pred.Value}, nil
	case *queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil // vacuous truth
		}
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}
