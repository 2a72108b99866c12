// Package engine implements the relcalc evaluator.
//
// Evaluation is call-by-value and substitution based: an application
// evaluates its target, then its arguments left to right, substitutes the
// argument values into the body and evaluates the result to normal form.
// There are no closures or environments.
//
// Eval is the single entry point; it dispatches on the term kind to the
// scalar, functional, declaration, sequencing and relational rules, each
// of which calls back into Eval for sub-terms.
//
// Top-level declarations are evaluated at most once. A Ref resolves its
// name in the decl.Table and forces the declaration's cell; every later
// Ref to the same name observes the cached value.
//
// Step performs exactly one reduction (a congruence step into the leftmost
// reducible sub-term, or one redex), and Trace repeats it to a value,
// numbering steps with a logical clock and bounding them by a quota.
//
// The evaluator is single-threaded. The only externally visible effect is
// print, which writes one line to the configured output.
package engine
