package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/relcalc/internal/engine"
	"github.com/roach88/relcalc/internal/pretty"
)

// StepOptions holds flags for the step command.
type StepOptions struct {
	*RootOptions
	Database string
	MaxSteps int
}

// StepLine is one reduction step.
type StepLine struct {
	Seq  int64  `json:"seq"`
	Rule string `json:"rule"`
	Term string `json:"term"`
}

// StepResult is the outcome of the step command.
type StepResult struct {
	File   string     `json:"file"`
	RunID  string     `json:"run_id"`
	Start  string     `json:"start"`
	Steps  []StepLine `json:"steps"`
	Output []string   `json:"output"`
	Value  string     `json:"value"`
}

func (r *StepResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "0 start %s\n", r.Start)
	for _, s := range r.Steps {
		fmt.Fprintf(w, "%d %s %s\n", s.Seq, s.Rule, s.Term)
	}
	if len(r.Output) > 0 {
		fmt.Fprintln(w, "== output ==")
		for _, line := range r.Output {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, "== result ==")
	fmt.Fprintln(w, r.Value)
}

// NewStepCommand creates the step command.
func NewStepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "step <file>",
		Short: "Print the single-step reduction trace of a program",
		Long: `Reduce a program one rule at a time and print every intermediate term,
numbered, with the name of the rule that produced it.

Example:
  relcalc step prog.yaml
  relcalc step --max-steps 50 loop.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite table database")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", engine.DefaultMaxSteps, "stop after this many steps")

	return cmd
}

func runStep(opts *StepOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	if opts.MaxSteps <= 0 {
		return NewExitError(ExitCommandError, "--max-steps must be positive")
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

	var printed bytes.Buffer
	eng := engine.New(prog.Decls,
		engine.WithOutput(&printed),
		engine.WithLogger(logger),
		engine.WithMaxSteps(opts.MaxSteps),
	)

	tr, err := eng.Trace(prog.Root)
	result := &StepResult{
		File:  path,
		RunID: tr.RunID,
		Start: pretty.Term(tr.Start),
		Steps: lo.Map(tr.Steps, func(s engine.TraceStep, _ int) StepLine {
			return StepLine{Seq: s.Seq, Rule: s.Rule, Term: pretty.Term(s.Term)}
		}),
		Output: splitLines(printed.String()),
		Value:  pretty.Term(tr.Result),
	}
	if err != nil {
		if !f.isJSON() {
			for _, s := range result.Steps {
				fmt.Fprintf(f.Writer, "%d %s %s\n", s.Seq, s.Rule, s.Term)
			}
		}
		return f.Fail(ExitFailure, evalErrorCode(err), err.Error(), result)
	}

	return f.Success(result)
}
