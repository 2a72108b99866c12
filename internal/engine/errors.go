package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
	"github.com/roach88/relcalc/internal/pretty"
)

// EvalError represents an error detected during evaluation.
//
// Every EvalError is fatal for the program being evaluated: there is no
// partial result and nothing is retried. Loc and Term point at the
// offending sub-term.
type EvalError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Loc is the source location of the offending term, if known.
	Loc ir.Loc

	// Term is the pretty rendering of the offending term.
	Term string
}

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeTypeMismatch indicates an operand of the wrong shape, or a
	// schema mismatch between tables.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeArityMismatch indicates a call with the wrong number of arguments.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeIllFormedApplication indicates an App whose target is not an abstraction.
	ErrCodeIllFormedApplication ErrorCode = "ILL_FORMED_APPLICATION"

	// ErrCodeIllFormedCall indicates a Call whose target is not a function.
	ErrCodeIllFormedCall ErrorCode = "ILL_FORMED_CALL"

	// ErrCodeStructural indicates a malformed program: empty sequence,
	// missing field or column, self-dependent declaration.
	ErrCodeStructural ErrorCode = "STRUCTURAL"

	// ErrCodeUnimplemented indicates a construct with no evaluation rule.
	// Every term kind currently has a rule, so nothing raises it; the code
	// is reserved for kinds added to ir before their evaluator.
	ErrCodeUnimplemented ErrorCode = "UNIMPLEMENTED"
)

// ErrNoTerm is returned by Eval for a reference to a type declaration.
// Callers that accept raw expressions (print) handle it; everywhere else
// it surfaces as a type mismatch.
var ErrNoTerm = decl.ErrNoTerm

// Error implements the error interface.
func (e *EvalError) Error() string {
	var b strings.Builder
	if e.Loc.IsValid() {
		b.WriteString(e.Loc.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Term != "" {
		fmt.Fprintf(&b, " (in %s)", e.Term)
	}
	return b.String()
}

// CodeOf returns the code of the EvalError wrapped by err, or "" if err
// is not an EvalError.
func CodeOf(err error) ErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsTypeMismatch returns true if the error is a type mismatch.
// Uses errors.As to handle wrapped errors.
func IsTypeMismatch(err error) bool {
	return CodeOf(err) == ErrCodeTypeMismatch
}

// IsArityMismatch returns true if the error is an arity mismatch.
func IsArityMismatch(err error) bool {
	return CodeOf(err) == ErrCodeArityMismatch
}

// IsIllFormed returns true for ill-formed applications and calls.
func IsIllFormed(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeIllFormedApplication || code == ErrCodeIllFormedCall
}

// IsStructural returns true if the error is a structural error.
func IsStructural(err error) bool {
	return CodeOf(err) == ErrCodeStructural
}

// IsUnimplemented returns true if the error reports a missing rule.
func IsUnimplemented(err error) bool {
	return CodeOf(err) == ErrCodeUnimplemented
}

func newError(code ErrorCode, at ir.Node, format string, args ...any) *EvalError {
	e := &EvalError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	if at != nil {
		e.Loc = at.Pos()
		e.Term = pretty.Node(at)
	}
	return e
}

func typeMismatch(at ir.Node, format string, args ...any) *EvalError {
	return newError(ErrCodeTypeMismatch, at, format, args...)
}

func structural(at ir.Node, format string, args ...any) *EvalError {
	return newError(ErrCodeStructural, at, format, args...)
}

// describe renders a value for messages: its kind followed by its text.
func describe(v ir.Term) string {
	return ir.KindName(v) + " " + pretty.Term(v)
}
