package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/relcalc/internal/engine"
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/pretty"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string
	SaveAs   string
}

// EvalResult is the outcome of the eval command.
type EvalResult struct {
	File    string   `json:"file"`
	RunID   string   `json:"run_id"`
	Output  []string `json:"output"`
	Kind    string   `json:"kind"`
	Value   string   `json:"value"`
	SavedAs string   `json:"saved_as,omitempty"`
}

func (r *EvalResult) renderText(w io.Writer) {
	fmt.Fprintln(w, "== result ==")
	fmt.Fprintln(w, r.Value)
	if r.SavedAs != "" {
		fmt.Fprintf(w, "saved as table %s\n", r.SavedAs)
	}
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Evaluate a program",
		Long: `Load a program document (.yaml, .yml, .json or .cue), evaluate it and
print its output followed by the result.

Load terms read tables from the database given with --db. With --save-as
a table result is stored in that database under the given name.

Example:
  relcalc eval prog.yaml
  relcalc eval --db ./tables.db --save-as staff query.yaml
  relcalc eval --format json prog.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite table database")
	cmd.Flags().StringVar(&opts.SaveAs, "save-as", "", "store a table result under this name (requires --db)")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	if opts.SaveAs != "" && opts.Database == "" {
		return NewExitError(ExitCommandError, "--save-as requires --db")
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if st != nil {
		defer st.Close()
	}

	prog, err := loadProgram(ctx, f, path, st, logger)
	if err != nil {
		return err
	}
	f.VerboseLog("loaded %s: %d declaration(s)", path, prog.Decls.Len())

	// Text output streams prints as they happen; JSON collects them.
	var printed bytes.Buffer
	var out io.Writer = &printed
	if !f.isJSON() {
		out = io.MultiWriter(cmd.OutOrStdout(), &printed)
	}

	eng := engine.New(prog.Decls,
		engine.WithOutput(out),
		engine.WithLogger(logger),
	)

	res, err := eng.Run(prog.Root)
	if err != nil {
		return f.Fail(ExitFailure, evalErrorCode(err), err.Error(), map[string]any{
			"run_id": res.RunID,
			"output": splitLines(printed.String()),
		})
	}

	result := &EvalResult{
		File:   path,
		RunID:  res.RunID,
		Output: splitLines(printed.String()),
		Kind:   ir.KindName(res.Value),
		Value:  pretty.Term(res.Value),
	}

	if opts.SaveAs != "" {
		tbl, ok := res.Value.(*ir.Table)
		if !ok {
			return f.Fail(ExitFailure, "E_NOT_A_TABLE",
				fmt.Sprintf("--save-as: result is %s, not a table", result.Kind), nil)
		}
		if err := st.SaveTable(ctx, opts.SaveAs, tbl); err != nil {
			return f.Fail(ExitFailure, "E_SAVE_FAILED", err.Error(), nil)
		}
		result.SavedAs = opts.SaveAs
	}

	return f.Success(result)
}
