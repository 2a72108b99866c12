package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/queryir"
)

const (
	tablesTable  = "relcalc_tables"
	columnsTable = "relcalc_columns"
	dataPrefix   = "relcalc_data_"
)

// dataColumns returns the positional column names c0..c(n-1).
func dataColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	return cols
}

// SaveTable stores tbl under name, replacing any table already stored
// under that name. The whole save is one transaction.
//
// Every column must hold values of a single kind (int, bool, str or unit).
func (s *Store) SaveTable(ctx context.Context, name string, tbl *ir.Table) error {
	if name == "" {
		return fmt.Errorf("save table: empty name")
	}
	if err := ir.Conforms(tbl); err != nil {
		return fmt.Errorf("save table %s: %w", name, err)
	}
	kinds, err := columnKinds(tbl)
	if err != nil {
		return fmt.Errorf("save table %s: %w", name, err)
	}
	key, err := ir.ValueKey(tbl)
	if err != nil {
		return fmt.Errorf("save table %s: %w", name, err)
	}

	data := dataPrefix + name
	cols := dataColumns(len(tbl.Schema))

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := dropTable(ctx, tx, name, data); err != nil {
			return fmt.Errorf("save table %s: %w", name, err)
		}

		stmts := []queryir.Statement{
			&queryir.CreateTable{Table: data, Columns: cols},
			&queryir.Insert{
				Table:   tablesTable,
				Columns: []string{"name", "data_table", "row_count", "content_key"},
				Values:  []any{name, data, int64(len(tbl.Rows)), key},
			},
		}
		for i, col := range tbl.Schema {
			stmts = append(stmts, &queryir.Insert{
				Table:   columnsTable,
				Columns: []string{"table_name", "position", "column_name", "kind"},
				Values:  []any{name, int64(i), col, string(kinds[i])},
			})
		}
		for _, row := range tbl.Rows {
			values := make([]any, len(row.Fields))
			for i, f := range row.Fields {
				values[i] = encodeCell(f.Value)
			}
			stmts = append(stmts, &queryir.Insert{Table: data, Columns: cols, Values: values})
		}

		for _, stmt := range stmts {
			if err := exec(ctx, tx, stmt); err != nil {
				return fmt.Errorf("save table %s: %w", name, err)
			}
		}
		return nil
	})
}

// DropTable removes a stored table. Returns ErrTableNotFound if there is
// no table by that name.
func (s *Store) DropTable(ctx context.Context, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		entry, err := lookup(ctx, tx, name)
		if err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
		if err := dropTable(ctx, tx, name, entry.dataTable); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
		return nil
	})
}

// dropTable removes the data table and the catalog entry, if present.
// Catalog columns go with the entry (ON DELETE CASCADE).
func dropTable(ctx context.Context, q querier, name, data string) error {
	if err := exec(ctx, q, &queryir.DropTable{Table: data, IfExists: true}); err != nil {
		return err
	}
	return exec(ctx, q, &queryir.Delete{
		From:   tablesTable,
		Filter: &queryir.Equals{Column: "name", Value: name},
	})
}
