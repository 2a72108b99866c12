package loader

import (
	"errors"
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
)

// Error codes. Stable across releases; the CLI reports them verbatim.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // File could not be read
	ErrCodeFormat      = "E003" // Unsupported file extension
	ErrCodeSyntax      = "E004" // YAML/JSON/CUE syntax error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeVersion     = "E006" // Unsupported document version
	ErrCodeUnknownKind = "E010" // Unknown term or type kind
	ErrCodeMalformed   = "E011" // Term has the wrong shape
	ErrCodeBadType     = "E012" // Type expression is invalid
	ErrCodeDuplicate   = "E013" // Duplicate declaration
	ErrCodeTableSource = "E014" // Stored table could not be loaded

	// Validation errors
	ErrCodeEmptyProg     = "E020" // prog with no statements
	ErrCodeSchema        = "E021" // Table rows do not conform to the schema
	ErrCodeArity         = "E022" // Call of a literal fn with the wrong arity
	ErrCodeDuplicateName = "E023" // Duplicate record label, column or parameter
)

// LoadError is a diagnostic about a program document.
type LoadError struct {
	Code    string
	Message string
	Loc     ir.Loc
}

func (e *LoadError) Error() string {
	if e.Loc.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Loc, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errorf(code string, loc ir.Loc, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Loc: loc}
}

// IsLoadError checks if an error is a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// CodeOf returns the code of a LoadError, or "" for any other error.
func CodeOf(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
