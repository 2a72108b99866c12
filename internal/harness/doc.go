// Package harness runs conformance scenarios against the evaluator.
//
// A scenario is a YAML document holding a program and the outcome it must
// produce:
//
//	name: employees_in_x
//	description: select rows from a stored table
//	tables:
//	  - name: employees
//	    value:
//	      table:
//	        schema: [name, dept]
//	        rows:
//	          - {name: A, dept: X}
//	          - {name: B, dept: Y}
//	program:
//	  print:
//	    select:
//	      from: {load: employees}
//	      where: {equals: [{var: dept}, X]}
//	expect:
//	  output: ['table(name, dept) [{name = "A", dept = "X"}]']
//	  result: unit
//
// Tables are evaluated and stored in a private in-memory SQLite store
// before the program is loaded, so load terms see them. expect.error names
// the code the program must fail with: an engine code such as
// TYPE_MISMATCH, a loader code such as E010, or STEPS_EXCEEDED.
//
// # Trace mode
//
// With mode: trace the program is reduced one step at a time and the
// rendered steps become part of the result. Trace assertions then apply:
//
//   - trace_contains: some step used rule
//   - trace_count: exactly count steps used rule
//   - trace_order: the first steps using rules occur in that order
//
// output_contains works in either mode.
//
// # Determinism
//
// Every run uses a fixed run id (run_id, or testutil.DefaultRunID) and a
// step clock starting at zero, so the same scenario always renders the
// same snapshot. RunWithGolden compares that snapshot against
// testdata/golden/<name>.golden.
package harness
