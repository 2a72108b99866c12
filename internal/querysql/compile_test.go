package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relcalc/internal/queryir"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		stmt   queryir.Statement
		sql    string
		params []any
	}{
		{
			name: "create",
			stmt: &queryir.CreateTable{Table: "emp", Columns: []string{"c0", "c1"}},
			sql:  `CREATE TABLE "emp" ("c0", "c1")`,
		},
		{
			name: "create if not exists without columns",
			stmt: &queryir.CreateTable{Table: "t", IfNotExists: true},
			sql:  `CREATE TABLE IF NOT EXISTS "t" ("_unused")`,
		},
		{
			name: "drop",
			stmt: &queryir.DropTable{Table: "emp", IfExists: true},
			sql:  `DROP TABLE IF EXISTS "emp"`,
		},
		{
			name:   "insert",
			stmt:   &queryir.Insert{Table: "emp", Columns: []string{"c0", "c1"}, Values: []any{"A", int64(3)}},
			sql:    `INSERT INTO "emp" ("c0", "c1") VALUES (?, ?)`,
			params: []any{"A", int64(3)},
		},
		{
			name: "insert no columns",
			stmt: &queryir.Insert{Table: "t"},
			sql:  `INSERT INTO "t" DEFAULT VALUES`,
		},
		{
			name: "select orders by rowid",
			stmt: &queryir.Select{From: "emp", Columns: []string{"c0"}},
			sql:  `SELECT "c0" FROM "emp" ORDER BY rowid ASC`,
		},
		{
			name: "select star",
			stmt: &queryir.Select{From: "emp"},
			sql:  `SELECT * FROM "emp" ORDER BY rowid ASC`,
		},
		{
			name: "select with filter and order",
			stmt: &queryir.Select{
				From:    "relcalc_columns",
				Columns: []string{"column_name", "kind"},
				Filter:  &queryir.Equals{Column: "table_name", Value: "emp"},
				OrderBy: []string{"position"},
			},
			sql:    `SELECT "column_name", "kind" FROM "relcalc_columns" WHERE "table_name" = ? ORDER BY "position" ASC`,
			params: []any{"emp"},
		},
		{
			name: "and",
			stmt: &queryir.Delete{From: "t", Filter: &queryir.And{Predicates: []queryir.Predicate{
				&queryir.Equals{Column: "a", Value: int64(1)},
				&queryir.Equals{Column: "b", Value: nil},
			}}},
			sql:    `DELETE FROM "t" WHERE "a" = ? AND "b" IS NULL`,
			params: []any{int64(1)},
		},
		{
			name: "empty and",
			stmt: &queryir.Delete{From: "t", Filter: &queryir.And{}},
			sql:  `DELETE FROM "t" WHERE 1 = 1`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := Compile(tt.stmt)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	evil := `x'); DROP TABLE emp; --`
	sql, params, err := Compile(&queryir.Select{
		From:   "emp",
		Filter: &queryir.Equals{Column: "c0", Value: evil},
	})
	require.NoError(t, err)
	assert.NotContains(t, sql, evil)
	assert.Equal(t, []any{evil}, params)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"emp"`, QuoteIdent("emp"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
	assert.Equal(t, `"select"`, QuoteIdent("select"))
}

func TestCompile_InvalidStatement(t *testing.T) {
	_, _, err := Compile(&queryir.Insert{Table: "t", Columns: []string{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid statement")

	_, _, err = Compile(nil)
	assert.Error(t, err)
}
