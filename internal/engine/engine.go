package engine

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
)

// DefaultMaxSteps is the default step quota of a Trace.
const DefaultMaxSteps = 10000

// Evaluator evaluates terms against a declaration table.
//
// An Evaluator is not safe for concurrent use: declarations are memoized
// in place.
type Evaluator struct {
	decls    *decl.Table
	out      io.Writer
	logger   *slog.Logger
	runIDs   RunIDGenerator
	clock    SeqSource
	maxSteps int

	// advancing holds declarations being stepped, to catch self-reference.
	advancing map[string]bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithOutput sets the writer print statements write to. Default: stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) {
		e.out = w
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithRunID sets the run id generator. Default: UUIDv7Generator.
func WithRunID(g RunIDGenerator) Option {
	return func(e *Evaluator) {
		e.runIDs = g
	}
}

// WithClock sets the sequence source used to number trace steps.
func WithClock(c SeqSource) Option {
	return func(e *Evaluator) {
		e.clock = c
	}
}

// WithMaxSteps sets the step quota of a Trace.
//
// Default: 10000 steps (DefaultMaxSteps).
func WithMaxSteps(maxSteps int) Option {
	return func(e *Evaluator) {
		e.maxSteps = maxSteps
	}
}

// New creates an Evaluator over decls. A nil table is replaced by an
// empty one.
func New(decls *decl.Table, opts ...Option) *Evaluator {
	if decls == nil {
		decls = decl.NewTable()
	}
	e := &Evaluator{
		decls:    decls,
		out:      os.Stdout,
		logger:   slog.Default(),
		runIDs:   UUIDv7Generator{},
		clock:    NewClock(),
		maxSteps: DefaultMaxSteps,

		advancing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decls returns the declaration table.
func (e *Evaluator) Decls() *decl.Table {
	return e.decls
}

// Result is the outcome of a Run.
type Result struct {
	RunID string
	Value ir.Term
}

// Run evaluates a whole program under a fresh run id.
//
// A program whose final statement is a reference to a type declaration
// has no value; Run returns that reference as the result.
func (e *Evaluator) Run(prog ir.Term) (*Result, error) {
	runID := e.runIDs.Generate()
	log := e.logger.With("run_id", runID)
	log.Info("run starting", "decls", e.decls.Len())

	v, err := e.Eval(prog)
	if errors.Is(err, ErrNoTerm) {
		v, err = prog, nil
	}
	if err != nil {
		log.Error("run failed", "code", CodeOf(err), "error", err)
		return &Result{RunID: runID}, err
	}

	log.Info("run finished", "result", ir.KindName(v))
	return &Result{RunID: runID, Value: v}, nil
}

// Eval reduces t to a value.
//
// Values are returned unchanged. Free variables and references to unknown
// declarations are returned unchanged as well: they have no rule. A
// reference to a type declaration yields ErrNoTerm.
func (e *Evaluator) Eval(t ir.Term) (ir.Term, error) {
	switch t := t.(type) {
	case *ir.True, *ir.False, *ir.Int, *ir.Str, *ir.Unit, *ir.Abs, *ir.Fn:
		return t, nil
	case *ir.Var:
		return t, nil

	case *ir.If:
		return e.evalIf(t)
	case *ir.Succ:
		return e.evalSucc(t)
	case *ir.Pred:
		return e.evalPred(t)
	case *ir.Iszero:
		return e.evalIszero(t)
	case *ir.And:
		return e.evalAnd(t)
	case *ir.Or:
		return e.evalOr(t)
	case *ir.Not:
		return e.evalNot(t)
	case *ir.Equals:
		return e.evalEquals(t)
	case *ir.Less:
		return e.evalLess(t)

	case *ir.App:
		return e.evalApp(t)
	case *ir.Call:
		return e.evalCall(t)

	case *ir.Ref:
		return e.evalRef(t)
	case *ir.Def:
		return e.evalDef(t)

	case *ir.Print:
		return e.evalPrint(t)
	case *ir.Prog:
		return e.evalProg(t)
	case *ir.Comma:
		return e.evalComma(t)

	case *ir.Record:
		return e.evalRecord(t)
	case *ir.Table:
		return e.evalTable(t)
	case *ir.Mem:
		return e.evalMem(t)
	case *ir.Proj:
		return e.evalProj(t)
	case *ir.SelectFromWhere:
		return e.evalSelect(t)
	case *ir.Join:
		return e.evalJoin(t)
	case *ir.Union:
		return e.evalUnion(t)
	case *ir.Intersect:
		return e.evalIntersect(t)
	case *ir.Except:
		return e.evalExcept(t)

	default:
		return t, nil
	}
}

// value evaluates an operand. A reference to a type declaration is not a
// valid operand.
func (e *Evaluator) value(t ir.Term) (ir.Term, error) {
	v, err := e.Eval(t)
	if errors.Is(err, ErrNoTerm) {
		return nil, typeMismatch(t, "expected a value, got a reference to a type declaration")
	}
	return v, err
}
