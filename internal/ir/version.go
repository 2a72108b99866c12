package ir

// Version constants for the program format and the evaluator.
const (
	// FormatVersion is the program document format version. Documents may
	// declare it in a top-level "version" key.
	FormatVersion = "1"

	// EngineVersion is the relcalc evaluator version.
	EngineVersion = "0.1.0"
)
