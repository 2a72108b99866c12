package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relcalc/internal/ir"
)

func TestDecodeCell(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
		want string
	}{
		{"int", KindInt, int64(7), "*ir.Int"},
		{"bool from integer", KindBool, int64(1), "*ir.True"},
		{"bool from bool", KindBool, false, "*ir.False"},
		{"string", KindStr, "a", "*ir.Str"},
		{"string from bytes", KindStr, []byte("a"), "*ir.Str"},
		{"unit", KindUnit, nil, "*ir.Unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeCell(tt.kind, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typeName(got))
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *ir.Int:
		return "*ir.Int"
	case *ir.True:
		return "*ir.True"
	case *ir.False:
		return "*ir.False"
	case *ir.Str:
		return "*ir.Str"
	case *ir.Unit:
		return "*ir.Unit"
	default:
		return "other"
	}
}

func TestDecodeCell_Mismatch(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		in   any
	}{
		{KindInt, "1"},
		{KindBool, int64(2)},
		{KindStr, int64(1)},
		{KindUnit, int64(0)},
		{KindAny, nil},
	} {
		_, err := decodeCell(tc.kind, tc.in)
		assert.ErrorIs(t, err, ErrCorrupt, "%s %v", tc.kind, tc.in)
	}
}

func TestColumnKinds(t *testing.T) {
	tbl := ir.NewTable([]string{"a", "b"},
		ir.NewRecord(ir.F("a", ir.NewInt(1)), ir.F("b", &ir.Unit{})),
		ir.NewRecord(ir.F("a", ir.NewInt(2)), ir.F("b", &ir.Unit{})),
	)
	kinds, err := columnKinds(tbl)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindInt, KindUnit}, kinds)

	kinds, err = columnKinds(ir.NewTable([]string{"a"}))
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindAny}, kinds)
}

func TestEncodeCell(t *testing.T) {
	assert.Equal(t, int64(3), encodeCell(ir.NewInt(3)))
	assert.Equal(t, true, encodeCell(&ir.True{}))
	assert.Equal(t, "s", encodeCell(ir.NewStr("s")))
	assert.Nil(t, encodeCell(&ir.Unit{}))
}
