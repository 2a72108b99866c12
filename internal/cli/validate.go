package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ValidationResult is the outcome of the validate command.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	File         string   `json:"file"`
	Declarations []string `json:"declarations"`
}

func (r *ValidationResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "✓ %s is valid (%d declaration(s))\n", r.File, len(r.Declarations))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a program without evaluating it",
		Long: `Load a program document and run the static checks: document shape,
term kinds, duplicate declarations and labels, table rows against their
schema, and the arity of calls to literal functions.

Exit codes:
  0 - The program is valid
  1 - The program has problems
  2 - The file could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, database, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite table database for load terms")

	return cmd
}

func runValidate(opts *RootOptions, database, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := openStore(database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if st != nil {
		defer st.Close()
	}

	prog, err := loadProgram(cmd.Context(), f, path, st, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	return f.Success(&ValidationResult{
		Valid:        true,
		File:         path,
		Declarations: prog.Decls.Names(),
	})
}
