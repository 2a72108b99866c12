package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Term
		expected string
	}{
		{"string", NewStr("hello"), `"hello"`},
		{"empty string", NewStr(""), `""`},
		{"int", NewInt(42), "42"},
		{"zero", NewInt(0), "0"},
		{"max int64", NewInt(9223372036854775807), "9223372036854775807"},
		{"true", &True{}, "true"},
		{"false", &False{}, "false"},
		{"unit", &Unit{}, `{"unit":{}}`},
		{"empty record", NewRecord(), `{"record":{}}`},
		{"record", NewRecord(F("a", NewInt(1))), `{"record":{"a":1}}`},
		{"empty table", NewTable([]string{"a"}), `{"table":{"rows":[],"schema":["a"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedLabels(t *testing.T) {
	r := NewRecord(
		F("zebra", NewInt(1)),
		F("alpha", NewInt(2)),
		F("beta", NewRecord(F("y", NewInt(1)), F("x", NewInt(2)))),
	)

	result, err := MarshalCanonical(r)
	require.NoError(t, err)
	assert.Equal(t, `{"record":{"alpha":2,"beta":{"record":{"x":2,"y":1}},"zebra":1}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 order differs from UTF-8 order.
	r := NewRecord(
		F("", NewInt(1)),
		F("𐀀", NewInt(2)),
	)

	result, err := MarshalCanonical(r)
	require.NoError(t, err)

	// UTF-16: 0xD800 (surrogate of U+10000) < 0xE000
	expected := `{"record":{"𐀀":2,"` + "" + `":1}}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalTableIsASet(t *testing.T) {
	a := NewTable([]string{"n", "s"},
		NewRecord(F("n", NewInt(2)), F("s", NewStr("b"))),
		NewRecord(F("n", NewInt(1)), F("s", NewStr("a"))),
		NewRecord(F("n", NewInt(2)), F("s", NewStr("b"))),
	)
	b := NewTable([]string{"n", "s"},
		NewRecord(F("n", NewInt(1)), F("s", NewStr("a"))),
		NewRecord(F("n", NewInt(2)), F("s", NewStr("b"))),
	)

	ab, err := MarshalCanonical(a)
	require.NoError(t, err)
	bb, err := MarshalCanonical(b)
	require.NoError(t, err)
	assert.Equal(t, string(bb), string(ab))
	assert.Equal(t,
		`{"table":{"rows":[{"n":1,"s":"a"},{"n":2,"s":"b"}],"schema":["n","s"]}}`,
		string(ab))
}

func TestMarshalCanonicalRejectsFunctions(t *testing.T) {
	tests := []struct {
		name  string
		input Term
	}{
		{"abstraction", &Abs{Param: "x", Body: &Var{Name: "x"}}},
		{"function", &Fn{Body: &Unit{}}},
		{"variable", &Var{Name: "x"}},
		{"redex", &Succ{Arg: NewInt(1)}},
		{"nested", NewRecord(F("f", &Abs{Param: "x", Body: &Var{Name: "x"}}))},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			assert.ErrorIs(t, err, ErrIncomparable)
		})
	}
}

func TestMarshalCanonicalDuplicateLabel(t *testing.T) {
	_, err := MarshalCanonical(NewRecord(F("a", NewInt(1)), F("a", NewInt(2))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate label "a"`)
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(NewStr("<script>alert('x') & more</script>"))
	require.NoError(t, err)

	assert.Equal(t, `"<script>alert('x') & more</script>"`, string(result))
	assert.NotContains(t, string(result), "\\u003c")
	assert.NotContains(t, string(result), "\\u0026")
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "é" as e + combining acute (NFD) and as a single code point (NFC)
	nfd := NewStr("é")
	nfc := NewStr("é")

	a, err := MarshalCanonical(nfd)
	require.NoError(t, err)
	b, err := MarshalCanonical(nfc)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))

	eq, err := Equal(NewRecord(F("é", NewInt(1))), NewRecord(F("é", NewInt(1))))
	require.NoError(t, err)
	assert.True(t, eq, "labels are normalized too")
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(NewStr(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalU2028U2029NotEscaped(t *testing.T) {
	result, err := MarshalCanonical(NewStr("a\u2028b\u2029c"))
	require.NoError(t, err)

	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
	assert.NotContains(t, string(result), `\u2028`)
	assert.NotContains(t, string(result), `\u2029`)
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"literal text", `escape is \u2028`, `"escape is \\u2028"`},
		{"mixed literal and actual", "literal \\u2029 and actual \u2029", "\"literal \\\\u2029 and actual \u2029\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(NewStr(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	r := NewRecord(F("b", NewStr("x")), F("a", NewTable([]string{"c"}, NewRecord(F("c", &True{})))))

	first, err := MarshalCanonical(r)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(r)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
