package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// ErrIncomparable is returned when a value has no canonical encoding:
// abstractions, functions, and anything that is not a value.
var ErrIncomparable = errors.New("value has no canonical encoding")

// MarshalCanonical produces the canonical encoding of a data value.
// Two values are structurally equal iff their canonical encodings are
// byte-identical.
//
// Key properties:
//  1. Record labels sorted by UTF-16 code units (RFC 8785 ordering), so
//     label order inside a record does not matter
//  2. Strings are NFC normalized and never HTML-escaped
//  3. Tables encode their column set and their deduplicated, sorted rows,
//     so row order and duplicate rows do not matter
//  4. Abstractions, functions and non-values are rejected (ErrIncomparable)
func MarshalCanonical(t Term) ([]byte, error) {
	return marshalCanonical(t)
}

func marshalCanonical(t Term) ([]byte, error) {
	switch v := t.(type) {
	case *True:
		return []byte("true"), nil
	case *False:
		return []byte("false"), nil
	case *Int:
		return []byte(strconv.FormatInt(v.Value, 10)), nil
	case *Str:
		return marshalCanonicalString(v.Value)
	case *Unit:
		return []byte(`{"unit":{}}`), nil
	case *Record:
		body, err := marshalCanonicalRecord(v)
		if err != nil {
			return nil, err
		}
		return wrapTagged("record", body), nil
	case *Table:
		body, err := marshalCanonicalTable(v)
		if err != nil {
			return nil, err
		}
		return wrapTagged("table", body), nil
	case nil:
		return nil, fmt.Errorf("%w: nil term", ErrIncomparable)
	default:
		return nil, fmt.Errorf("%w: %s", ErrIncomparable, KindName(t))
	}
}

func wrapTagged(tag string, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"`)
	buf.WriteString(tag)
	buf.WriteString(`":`)
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes()
}

// marshalCanonicalRecord encodes a record as an object keyed by label.
func marshalCanonicalRecord(r *Record) ([]byte, error) {
	labels := r.Labels()
	slices.SortFunc(labels, compareKeysRFC8785)
	for i := 1; i < len(labels); i++ {
		if labels[i] == labels[i-1] {
			return nil, fmt.Errorf("record has duplicate label %q", labels[i])
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(label)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", label, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		value, _ := r.Get(label)
		valBytes, err := marshalCanonical(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", label, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalCanonicalTable encodes a table as its column set plus its row set.
func marshalCanonicalTable(t *Table) ([]byte, error) {
	schema := slices.Clone(t.Schema)
	slices.SortFunc(schema, compareKeysRFC8785)

	rows := make([][]byte, 0, len(t.Rows))
	for i, r := range t.Rows {
		rowBytes, err := marshalCanonicalRecord(r)
		if err != nil {
			return nil, fmt.Errorf("row[%d]: %w", i, err)
		}
		rows = append(rows, rowBytes)
	}
	slices.SortFunc(rows, bytes.Compare)
	rows = slices.CompactFunc(rows, bytes.Equal)

	var buf bytes.Buffer
	buf.WriteString(`{"rows":[`)
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(row)
	}
	buf.WriteString(`],"schema":[`)
	for i, col := range schema {
		if i > 0 {
			buf.WriteByte(',')
		}
		colBytes, err := marshalCanonicalString(col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		buf.Write(colBytes)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
// Go's default string comparison uses UTF-8 which produces a different order
// for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// marshalCanonicalString produces a canonical JSON string with NFC normalization.
// Only control characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. An escape preceded by an odd
// number of backslashes is literal text and is preserved.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}
