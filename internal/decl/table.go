// Package decl owns the top-level declarations of a program.
//
// Each Def gets one Entry, a one-shot memoized cell. Ref nodes carry only
// the declaration name and resolve through the Table, so the single
// permitted term mutation (caching a Def's evaluated value) happens here
// and nowhere else.
package decl

import (
	"errors"
	"fmt"

	"github.com/roach88/relcalc/internal/ir"
)

var (
	// ErrNoTerm is returned when a declaration binds a type: there is no
	// term to evaluate.
	ErrNoTerm = errors.New("declaration binds a type, not a term")

	// ErrCycle is returned when an entry is forced while it is already
	// being forced, i.e. the declaration's value depends on itself.
	ErrCycle = errors.New("declaration depends on itself")

	// ErrDuplicate is returned by Define for a name that is already bound.
	ErrDuplicate = errors.New("duplicate declaration")
)

// Table maps declaration names to their entries, in declaration order.
type Table struct {
	entries map[string]*Entry
	order   []string
}

// NewTable creates an empty declaration table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Define registers def. The Def node is owned by the table from now on.
func (t *Table) Define(def *ir.Def) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("define: declaration has no name")
	}
	if _, exists := t.entries[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
	}
	t.entries[def.Name] = &Entry{def: def}
	t.order = append(t.order, def.Name)
	return nil
}

// Lookup returns the entry for name.
func (t *Table) Lookup(name string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	e, ok := t.entries[name]
	return e, ok
}

// Names returns declaration names in the order they were defined.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of declarations.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
