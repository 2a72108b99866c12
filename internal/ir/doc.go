// Package ir defines the term language evaluated by relcalc.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Term and Type are sealed interfaces; backends switch exhaustively
//   - Integers are int64 naturals, never floats
//   - Def is the only node mutated after construction (declaration memoization)
//   - Structural equality and set membership go through the canonical encoding
package ir
