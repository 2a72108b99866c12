package store

import (
	"context"
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/queryir"
)

// TableInfo describes a stored table.
type TableInfo struct {
	Name    string
	Columns []string
	Kinds   []Kind
	Rows    int64
	Key     string
}

type catalogEntry struct {
	dataTable  string
	rowCount   int64
	contentKey string
}

// lookup reads the catalog row for name.
func lookup(ctx context.Context, q querier, name string) (*catalogEntry, error) {
	rows, err := query(ctx, q, &queryir.Select{
		From:    tablesTable,
		Columns: []string{"data_table", "row_count", "content_key"},
		Filter:  &queryir.Equals{Column: "name", Value: name},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	var e catalogEntry
	if err := rows.Scan(&e.dataTable, &e.rowCount, &e.contentKey); err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	return &e, rows.Err()
}

// columns reads the schema and column kinds of a stored table.
func columns(ctx context.Context, q querier, name string) ([]string, []Kind, error) {
	rows, err := query(ctx, q, &queryir.Select{
		From:    columnsTable,
		Columns: []string{"column_name", "kind"},
		Filter:  &queryir.Equals{Column: "table_name", Value: name},
		OrderBy: []string{"position"},
	})
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		names []string
		kinds []Kind
	)
	for rows.Next() {
		var col, kind string
		if err := rows.Scan(&col, &kind); err != nil {
			return nil, nil, fmt.Errorf("scan columns: %w", err)
		}
		names = append(names, col)
		kinds = append(kinds, Kind(kind))
	}
	return names, kinds, rows.Err()
}

// LoadTable reads the table stored under name. Rows come back in the
// order they were saved.
func (s *Store) LoadTable(ctx context.Context, name string) (*ir.Table, error) {
	entry, err := lookup(ctx, s.db, name)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	schema, kinds, err := columns(ctx, s.db, name)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}

	tbl := &ir.Table{Schema: schema, Rows: []*ir.Record{}}
	if schema == nil {
		tbl.Schema = []string{}
	}

	sel := &queryir.Select{From: entry.dataTable, Columns: dataColumns(len(schema))}
	if len(schema) == 0 {
		sel.Columns = []string{"_unused"}
	}
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		cells := make([]any, len(sel.Columns))
		ptrs := make([]any, len(cells))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("load table %s: scan: %w", name, err)
		}
		fields := make([]ir.Field, len(schema))
		for i, col := range schema {
			v, err := decodeCell(kinds[i], cells[i])
			if err != nil {
				return nil, fmt.Errorf("load table %s: column %q: %w", name, col, err)
			}
			fields[i] = ir.F(col, v)
		}
		tbl.Rows = append(tbl.Rows, ir.NewRecord(fields...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}

	if int64(len(tbl.Rows)) != entry.rowCount {
		return nil, fmt.Errorf("load table %s: %w: %d rows, catalog says %d", name, ErrCorrupt, len(tbl.Rows), entry.rowCount)
	}
	key, err := ir.ValueKey(tbl)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	if key != entry.contentKey {
		return nil, fmt.Errorf("load table %s: %w", name, ErrCorrupt)
	}
	return tbl, nil
}

// ListTables describes every stored table, ordered by name.
func (s *Store) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := query(ctx, s.db, &queryir.Select{
		From:    tablesTable,
		Columns: []string{"name", "row_count", "content_key"},
		OrderBy: []string{"name"},
	})
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var infos []TableInfo
	for rows.Next() {
		var info TableInfo
		if err := rows.Scan(&info.Name, &info.Rows, &info.Key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list tables: scan: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list tables: %w", err)
	}
	// Single connection: release it before the per-table column queries.
	rows.Close()

	for i := range infos {
		infos[i].Columns, infos[i].Kinds, err = columns(ctx, s.db, infos[i].Name)
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
	}
	return infos, nil
}
