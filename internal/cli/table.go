package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/relcalc/internal/engine"
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/store"
)

// TableOptions holds flags shared by the table subcommands.
type TableOptions struct {
	*RootOptions
	Database string
}

// NewTableCommand creates the table command and its subcommands.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage stored tables",
		Long: `Import, export and list the tables kept in a SQLite database.

Stored tables are what load terms read. A stored table holds integers,
booleans, strings and unit values; each column holds a single kind.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite table database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newTableImportCommand(opts))
	cmd.AddCommand(newTableExportCommand(opts))
	cmd.AddCommand(newTableListCommand(opts))
	return cmd
}

func (o *TableOptions) open() (*store.Store, error) {
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// ImportResult is the outcome of table import.
type ImportResult struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

func (r *ImportResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "imported table %s (%d row(s))\n", r.Name, r.Rows)
}

func newTableImportCommand(opts *TableOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import --name <name> <file>",
		Short: "Evaluate a program and store its table result",
		Long: `Evaluate a program document whose result is a table and store the
table under --name, replacing any table of that name. The document may
itself load stored tables.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableImport(opts, name, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name to store the table under (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runTableImport(opts *TableOptions, name, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := opts.open()
	if err != nil {
		return err
	}
	defer st.Close()

	prog, err := loadProgram(ctx, f, path, st, logger)
	if err != nil {
		return err
	}

	// Prints of an import program are diagnostics, not table data.
	eng := engine.New(prog.Decls, engine.WithOutput(cmd.ErrOrStderr()), engine.WithLogger(logger))
	res, err := eng.Run(prog.Root)
	if err != nil {
		return f.Fail(ExitFailure, evalErrorCode(err), err.Error(), nil)
	}
	tbl, ok := res.Value.(*ir.Table)
	if !ok {
		return f.Fail(ExitFailure, "E_NOT_A_TABLE",
			fmt.Sprintf("%s evaluates to %s, not a table", path, ir.KindName(res.Value)), nil)
	}
	if err := st.SaveTable(ctx, name, tbl); err != nil {
		return f.Fail(ExitFailure, "E_SAVE_FAILED", err.Error(), nil)
	}

	return f.Success(&ImportResult{Name: name, Columns: tbl.Schema, Rows: len(tbl.Rows)})
}

// exportDoc is a stored table as a program document, so an export can be
// imported again.
type exportDoc struct {
	Table exportTable `json:"table" yaml:"table"`
}

type exportTable struct {
	Schema []string `json:"schema" yaml:"schema,flow"`
	Rows   []exportRow `json:"rows" yaml:"rows"`
}

type exportRow []any

// MarshalYAML writes each row on one line.
func (r exportRow) MarshalYAML() (any, error) {
	var n yaml.Node
	if err := n.Encode([]any(r)); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

func (d *exportDoc) renderText(w io.Writer) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	_ = enc.Encode(d)
	_ = enc.Close()
}

func newExportDoc(tbl *ir.Table) *exportDoc {
	rows := make([]exportRow, len(tbl.Rows))
	for i, row := range tbl.Rows {
		cells := make([]any, len(row.Fields))
		for j, field := range row.Fields {
			cells[j] = exportCell(field.Value)
		}
		rows[i] = cells
	}
	return &exportDoc{Table: exportTable{Schema: tbl.Schema, Rows: rows}}
}

func exportCell(t ir.Term) any {
	switch v := t.(type) {
	case *ir.Int:
		return v.Value
	case *ir.Str:
		return v.Value
	case *ir.True:
		return true
	case *ir.False:
		return false
	default:
		return map[string]any{"unit": nil}
	}
}

func newTableExportCommand(opts *TableOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <name>",
		Short: "Print a stored table as a program document",
		Long: `Print a stored table as a table literal. Text output is YAML and JSON
output carries the same document under "data"; either can be fed back to
table import.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.open()
			if err != nil {
				return err
			}
			defer st.Close()

			tbl, err := st.LoadTable(cmd.Context(), args[0])
			if err != nil {
				return f.Fail(ExitFailure, "E_LOAD_FAILED", err.Error(), nil)
			}
			return f.Success(newExportDoc(tbl))
		},
	}
}

// TableList is the outcome of table list.
type TableList struct {
	Tables []TableSummary `json:"tables"`
}

// TableSummary describes one stored table.
type TableSummary struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Kinds   []string `json:"kinds"`
	Rows    int64    `json:"rows"`
	Key     string   `json:"content_key"`
}

func (l *TableList) renderText(w io.Writer) {
	if len(l.Tables) == 0 {
		fmt.Fprintln(w, "No tables.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tROWS\tCOLUMNS\tKEY")
	for _, t := range l.Tables {
		cols := strings.Join(lo.Map(t.Columns, func(c string, i int) string {
			return c + ":" + t.Kinds[i]
		}), ", ")
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t.Name, t.Rows, cols, shortKey(t.Key))
	}
	_ = tw.Flush()
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func newTableListCommand(opts *TableOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored tables",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.open()
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.ListTables(cmd.Context())
			if err != nil {
				return f.Fail(ExitFailure, "E_LIST_FAILED", err.Error(), nil)
			}
			list := &TableList{Tables: make([]TableSummary, len(infos))}
			for i, info := range infos {
				kinds := make([]string, len(info.Kinds))
				for j, k := range info.Kinds {
					kinds[j] = string(k)
				}
				list.Tables[i] = TableSummary{
					Name:    info.Name,
					Columns: info.Columns,
					Kinds:   kinds,
					Rows:    info.Rows,
					Key:     info.Key,
				}
			}
			return f.Success(list)
		},
	}
}
