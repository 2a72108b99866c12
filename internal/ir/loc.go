package ir

import "fmt"

// Loc is a source position attached to every node by the loader.
// The zero Loc means "unknown".
type Loc struct {
	File string
	Line int
	Col  int
}

// Pos returns the node's source location.
func (l Loc) Pos() Loc { return l }

// IsValid reports whether the location carries a line number.
func (l Loc) IsValid() bool { return l.Line > 0 }

func (l Loc) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}
