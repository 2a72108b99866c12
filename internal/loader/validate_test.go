package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
)

func codes(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = CodeOf(err)
	}
	return out
}

func TestValidateClean(t *testing.T) {
	p := loadString(t, "prog.yaml", `
prog:
  - def: {name: emp, value: {table: {schema: [name, dept], rows: [[A, X], [B, Y]]}}}
  - print: {select: {project: {name: {var: name}}, from: {ref: emp}, where: {equals: [{var: dept}, X]}}}
  - call: {fn: {fn: {params: [a, b], body: {var: a}}}, args: [1, 2]}
`)
	assert.Empty(t, Validate(p))
}

func TestValidateFindsEveryProblem(t *testing.T) {
	p := loadString(t, "prog.yaml", `
prog:
  - prog: []
  - table: {schema: [a, b], rows: [{b: 1, a: 2}]}
  - record: {x: 1}
  - call: {fn: {fn: {params: [a], body: {var: a}}}, args: [1, 2]}
  - fn: {params: [a, a], body: 1}
  - proj: [{var: r}, [a, a]]
`)
	assert.Equal(t, []string{
		ErrCodeEmptyProg,
		ErrCodeSchema,
		ErrCodeArity,
		ErrCodeDuplicateName,
		ErrCodeDuplicateName,
	}, codes(Validate(p)))
}

func TestValidateDuplicateDeclarations(t *testing.T) {
	// Programs built in code bypass the loader's own duplicate check.
	root := &ir.Prog{Stmts: []ir.Term{
		&ir.Def{Name: "x", Value: ir.NewInt(1), Loc: ir.Loc{Line: 1}},
		&ir.Def{Name: "x", Value: ir.NewInt(2), Loc: ir.Loc{Line: 2}},
	}}
	errs := Validate(&Program{Root: root, Decls: decl.NewTable()})
	assert.Equal(t, []string{ErrCodeDuplicate}, codes(errs))
	assert.Contains(t, errs[0].Error(), "already declared at 1:0")
}
