package store

import (
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
)

// Kind is the storage kind of a column.
type Kind string

const (
	KindInt  Kind = "int"
	KindBool Kind = "bool"
	KindStr  Kind = "str"
	KindUnit Kind = "unit"
	// KindAny marks a column of a table saved without rows.
	KindAny Kind = "any"
)

// kindOf returns the storage kind of a value.
func kindOf(t ir.Term) (Kind, error) {
	switch t.(type) {
	case *ir.Int:
		return KindInt, nil
	case *ir.True, *ir.False:
		return KindBool, nil
	case *ir.Str:
		return KindStr, nil
	case *ir.Unit:
		return KindUnit, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedValue, ir.KindName(t))
	}
}

// columnKinds infers one kind per schema column; every row must agree.
func columnKinds(t *ir.Table) ([]Kind, error) {
	kinds := make([]Kind, len(t.Schema))
	for i := range kinds {
		kinds[i] = KindAny
	}
	for r, row := range t.Rows {
		for i, f := range row.Fields {
			k, err := kindOf(f.Value)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r, f.Label, err)
			}
			if kinds[i] == KindAny {
				kinds[i] = k
				continue
			}
			if kinds[i] != k {
				return nil, fmt.Errorf("%w: column %q mixes %s and %s values", ErrUnsupportedValue, f.Label, kinds[i], k)
			}
		}
	}
	return kinds, nil
}

// encodeCell converts a value to its SQL parameter.
func encodeCell(t ir.Term) any {
	switch v := t.(type) {
	case *ir.Int:
		return v.Value
	case *ir.True:
		return true
	case *ir.False:
		return false
	case *ir.Str:
		return v.Value
	default:
		return nil
	}
}

// decodeCell converts a scanned SQL value back to a value of the given kind.
func decodeCell(kind Kind, v any) (ir.Term, error) {
	switch kind {
	case KindInt:
		if n, ok := v.(int64); ok {
			return ir.NewInt(n), nil
		}
	case KindBool:
		if n, ok := v.(int64); ok && (n == 0 || n == 1) {
			return ir.NewBool(n == 1), nil
		}
		if b, ok := v.(bool); ok {
			return ir.NewBool(b), nil
		}
	case KindStr:
		switch s := v.(type) {
		case string:
			return ir.NewStr(s), nil
		case []byte:
			return ir.NewStr(string(s)), nil
		}
	case KindUnit:
		if v == nil {
			return &ir.Unit{}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s column holds %T", ErrCorrupt, kind, v)
}
