package loader

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/relcalc/internal/decl"
	"github.com/roach88/relcalc/internal/ir"
)

// TableSource supplies stored tables for load terms.
type TableSource interface {
	LoadTable(ctx context.Context, name string) (*ir.Table, error)
}

// Program is a loaded program: its root term and its declarations.
type Program struct {
	Root  ir.Term
	Decls *decl.Table
	File  string
}

// Loader reads program documents.
type Loader struct {
	tables TableSource
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTables sets the store consulted by load terms.
func WithTables(src TableSource) Option {
	return func(l *Loader) {
		l.tables = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Supported reports whether path has an extension the loader reads.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".cue":
		return true
	default:
		return false
	}
}

// LoadFile reads and decodes the program at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errorf(ErrCodeNotFound, ir.Loc{}, "program file not found: %s", path)
	}
	if err != nil {
		return nil, errorf(ErrCodeReadFailed, ir.Loc{}, "reading %s: %v", path, err)
	}
	return l.LoadBytes(ctx, path, data)
}

// LoadBytes decodes a program document. The format is chosen by the
// extension of name, which also labels source locations.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*Program, error) {
	var (
		root *node
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		root, err = parseYAML(name, data)
	case ".cue":
		root, err = parseCUE(name, data)
	default:
		return nil, errorf(ErrCodeFormat, ir.Loc{}, "unsupported program format %q (want .yaml, .yml, .json or .cue)", filepath.Ext(name))
	}
	if err != nil {
		return nil, err
	}
	return l.build(ctx, name, root)
}

// LoadNode decodes a program already parsed as YAML, such as one embedded
// in a test scenario.
func (l *Loader) LoadNode(ctx context.Context, name string, y *yaml.Node) (*Program, error) {
	root, err := fromYAML(name, y)
	if err != nil {
		return nil, err
	}
	return l.build(ctx, name, root)
}

func parseYAML(name string, data []byte) (*node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errorf(ErrCodeSyntax, ir.Loc{File: name}, "parsing %s: %v", name, err)
	}
	if doc.Kind == 0 {
		return nil, errorf(ErrCodeMalformed, ir.Loc{File: name}, "empty document")
	}
	return fromYAML(name, &doc)
}

func parseCUE(name string, data []byte) (*node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, errorf(ErrCodeSyntax, ir.Loc{File: name}, "building CUE value: %v", err)
	}
	return fromCUE(v)
}

// build decodes the document root and registers its declarations.
func (l *Loader) build(ctx context.Context, name string, root *node) (*Program, error) {
	if root.kind == mapNode {
		if vn, ok := root.get("version"); ok {
			if err := checkVersion(vn); err != nil {
				return nil, err
			}
			root = withoutKey(root, "version")
		}
	}

	d := &decoder{ctx: ctx, tables: l.tables}
	term, err := d.term(root)
	if err != nil {
		return nil, err
	}

	decls := decl.NewTable()
	for _, def := range d.defs {
		if err := decls.Define(def); err != nil {
			if errors.Is(err, decl.ErrDuplicate) {
				return nil, errorf(ErrCodeDuplicate, def.Loc, "%s is declared more than once", def.Name)
			}
			return nil, errorf(ErrCodeGeneric, def.Loc, "%v", err)
		}
	}

	l.logger.Debug("program loaded",
		"file", name,
		"kind", ir.KindName(term),
		"declarations", decls.Len())
	return &Program{Root: term, Decls: decls, File: name}, nil
}

func withoutKey(n *node, key string) *node {
	out := &node{kind: mapNode, loc: n.loc}
	for i, k := range n.keys {
		if k != key {
			out.keys = append(out.keys, k)
			out.vals = append(out.vals, n.vals[i])
		}
	}
	return out
}
