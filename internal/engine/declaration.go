package engine

import (
	"errors"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
)

// evalRef forces the named declaration. Unknown names have no rule and
// come back unchanged.
func (e *Evaluator) evalRef(t *ir.Ref) (ir.Term, error) {
	entry, ok := e.decls.Lookup(t.Name)
	if !ok {
		return t, nil
	}
	return e.force(t, entry)
}

// evalDef forces the declaration and returns the Def itself, now holding
// its evaluated value. Type declarations are left untouched.
func (e *Evaluator) evalDef(t *ir.Def) (ir.Term, error) {
	entry, err := e.entryFor(t)
	if err != nil {
		return nil, err
	}
	if entry.IsType() {
		return t, nil
	}
	if _, err := e.force(t, entry); err != nil {
		return nil, err
	}
	return t, nil
}

func (e *Evaluator) force(at ir.Term, entry *decl.Entry) (ir.Term, error) {
	wasForced := entry.Forced()
	v, err := entry.Force(e.Eval)
	switch {
	case errors.Is(err, decl.ErrCycle):
		return nil, structural(at, "declaration %s depends on itself", entry.Name())
	case err != nil:
		return nil, err
	}
	if !wasForced {
		e.logger.Debug("declaration evaluated", "name", entry.Name(), "result", ir.KindName(v))
	}
	return v, nil
}

// entryFor returns the entry owning def, registering def if the table has
// never seen its name.
func (e *Evaluator) entryFor(def *ir.Def) (*decl.Entry, error) {
	entry, ok := e.decls.Lookup(def.Name)
	if !ok {
		if err := e.decls.Define(def); err != nil {
			return nil, structural(def, "%v", err)
		}
		entry, _ = e.decls.Lookup(def.Name)
		return entry, nil
	}
	if entry.Def() != def {
		return nil, structural(def, "declaration %s is already defined", def.Name)
	}
	return entry, nil
}
