package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ImportListExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tables.db")
	src := writeFile(t, dir, "employees.yaml", employeesDoc)

	res := execute(t, "table", "import", "--db", db, "--name", "employees", src)
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
	assert.Equal(t, "imported table employees (2 row(s))\n", res.stdout)

	res = execute(t, "table", "list", "--db", db)
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
	assert.Contains(t, res.stdout, "NAME")
	assert.Contains(t, res.stdout, "name:str, dept:str")

	res = execute(t, "table", "export", "--db", db, "employees")
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
	assert.Contains(t, res.stdout, "schema: [name, dept]")
	assert.Contains(t, res.stdout, "- [A, X]")
	assert.Contains(t, res.stdout, "- [B, Y]")
}

func TestTable_ExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tables.db")
	src := writeFile(t, dir, "mixed.yaml", `table:
  schema: [n, s, b, u]
  rows:
    - [1, "true", false, {unit: null}]
    - [2, "007", true, {unit: null}]
`)
	res := execute(t, "table", "import", "--db", db, "--name", "mixed", src)
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)

	res = execute(t, "table", "export", "--db", db, "mixed")
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
	exported := writeFile(t, dir, "exported.yaml", res.stdout)

	res = execute(t, "table", "import", "--db", db, "--name", "copy", exported)
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)

	res = execute(t, "--format", "json", "table", "list", "--db", db)
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
	_, data := decodeResponse(t, res.stdout)
	tables := data["tables"].([]any)
	require.Len(t, tables, 2)
	copied, mixed := tables[0].(map[string]any), tables[1].(map[string]any)
	assert.Equal(t, "copy", copied["name"])
	assert.Equal(t, "mixed", mixed["name"])
	assert.Equal(t, mixed["content_key"], copied["content_key"])
	assert.Equal(t, []any{"int", "str", "bool", "unit"}, mixed["kinds"])
}

func TestTable_ExportJSONIsImportable(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tables.db")
	src := writeFile(t, dir, "employees.yaml", employeesDoc)
	require.Equal(t, ExitSuccess, execute(t, "table", "import", "--db", db, "--name", "e", src).code)

	res := execute(t, "--format", "json", "table", "export", "--db", db, "e")
	require.Equal(t, ExitSuccess, res.code)
	_, data := decodeResponse(t, res.stdout)
	table := data["table"].(map[string]any)
	assert.Equal(t, []any{"name", "dept"}, table["schema"])
	assert.Equal(t, []any{[]any{"A", "X"}, []any{"B", "Y"}}, table["rows"])
}

func TestTable_Errors(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tables.db")

	res := execute(t, "table", "export", "--db", db, "nowhere")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "Error [E_LOAD_FAILED]")

	notTable := writeFile(t, dir, "one.yaml", "succ: 0\n")
	res = execute(t, "table", "import", "--db", db, "--name", "one", notTable)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "evaluates to integer, not a table")

	res = execute(t, "table", "import", "--db", db, notTable)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `required flag(s) "name" not set`)

	res = execute(t, "table", "list", "--db", db)
	require.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, "No tables.\n", res.stdout)
}
