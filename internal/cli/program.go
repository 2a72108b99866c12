package cli

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/relcalc/internal/engine"
	"github.com/roach88/relcalc/internal/loader"
	"github.com/roach88/relcalc/internal/store"
)

// ProblemDetail locates one load or validation problem.
type ProblemDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
}

func problemOf(err error) ProblemDetail {
	var le *loader.LoadError
	if errors.As(err, &le) {
		return ProblemDetail{
			Code:    le.Code,
			Message: le.Message,
			File:    le.Loc.File,
			Line:    le.Loc.Line,
			Col:     le.Loc.Col,
		}
	}
	return ProblemDetail{Code: loader.ErrCodeGeneric, Message: err.Error()}
}

// loadExitCode maps a load failure to an exit code: an unreadable file is
// a command error, a bad program is a failure.
func loadExitCode(err error) int {
	switch loader.CodeOf(err) {
	case loader.ErrCodeReadFailed, loader.ErrCodeFormat, loader.ErrCodeNotFound:
		return ExitCommandError
	}
	return ExitFailure
}

// openStore opens the database at path, or returns nil for an empty path.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	return store.Open(path)
}

// loadProgram reads and validates a program file. Load terms read st.
func loadProgram(ctx context.Context, f *OutputFormatter, path string, st *store.Store, logger *slog.Logger) (*loader.Program, error) {
	opts := []loader.Option{loader.WithLogger(logger)}
	if st != nil {
		opts = append(opts, loader.WithTables(st))
	}

	prog, err := loader.New(opts...).LoadFile(ctx, path)
	if err != nil {
		p := problemOf(err)
		return nil, f.Fail(loadExitCode(err), p.Code, err.Error(), p)
	}

	if errs := loader.Validate(prog); len(errs) > 0 {
		problems := lo.Map(errs, func(err error, _ int) ProblemDetail { return problemOf(err) })
		msgs := lo.Map(errs, func(err error, _ int) string { return err.Error() })
		return nil, f.Fail(ExitFailure, problems[0].Code, strings.Join(msgs, "\n"), problems)
	}
	return prog, nil
}

// evalErrorCode maps an evaluation failure to the code shown to the user.
func evalErrorCode(err error) string {
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	if engine.IsStepsExceededError(err) {
		return string(engine.ErrCodeStepsExceeded)
	}
	return loader.ErrCodeGeneric
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
