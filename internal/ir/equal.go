package ir

import (
	"bytes"
	"fmt"
	"slices"
)

// Equal reports structural equality of two values:
//   - integers by numeric value, booleans and strings by identity
//   - units are always equal
//   - records by their label/value bindings, irrespective of field order
//   - tables by set-equality of schema and rows
//
// Values without a canonical encoding (abstractions, functions, non-values)
// return an error wrapping ErrIncomparable.
func Equal(a, b Term) (bool, error) {
	ab, err := MarshalCanonical(a)
	if err != nil {
		return false, err
	}
	bb, err := MarshalCanonical(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}

// SameSchema reports whether two schemas list the same columns in the same order.
func SameSchema(a, b []string) bool {
	return slices.Equal(a, b)
}

// Conforms checks the Table invariant: every row carries exactly the
// schema's labels, in schema order.
func Conforms(t *Table) error {
	seen := make(map[string]bool, len(t.Schema))
	for _, col := range t.Schema {
		if seen[col] {
			return fmt.Errorf("schema has duplicate column %q", col)
		}
		seen[col] = true
	}
	for i, r := range t.Rows {
		labels := r.Labels()
		if len(labels) != len(t.Schema) {
			return fmt.Errorf("row[%d] has %d fields, schema has %d columns", i, len(labels), len(t.Schema))
		}
		for j, label := range labels {
			if label != t.Schema[j] {
				return fmt.Errorf("row[%d] field %d is %q, schema expects %q", i, j, label, t.Schema[j])
			}
		}
	}
	return nil
}
