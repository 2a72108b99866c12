package loader

import (
	"cuelang.org/go/cue"
	"gopkg.in/yaml.v3"

	"github.com/roach88/relcalc/internal/ir"
)

type nodeKind int

const (
	mapNode nodeKind = iota
	listNode
	intNode
	boolNode
	strNode
	nullNode
)

func (k nodeKind) String() string {
	switch k {
	case mapNode:
		return "map"
	case listNode:
		return "list"
	case intNode:
		return "integer"
	case boolNode:
		return "boolean"
	case strNode:
		return "string"
	case nullNode:
		return "null"
	default:
		return "unknown"
	}
}

// node is the format-neutral document tree. Map keys keep document order.
type node struct {
	kind  nodeKind
	loc   ir.Loc
	keys  []string
	vals  []*node
	items []*node
	i     int64
	b     bool
	s     string
}

func (n *node) get(key string) (*node, bool) {
	for i, k := range n.keys {
		if k == key {
			return n.vals[i], true
		}
	}
	return nil, false
}

func (n *node) has(key string) bool {
	_, ok := n.get(key)
	return ok
}

func fromYAML(file string, y *yaml.Node) (*node, error) {
	loc := ir.Loc{File: file, Line: y.Line, Col: y.Column}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return nil, errorf(ErrCodeMalformed, loc, "empty document")
		}
		return fromYAML(file, y.Content[0])
	case yaml.AliasNode:
		return fromYAML(file, y.Alias)
	case yaml.MappingNode:
		n := &node{kind: mapNode, loc: loc}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, errorf(ErrCodeMalformed, ir.Loc{File: file, Line: k.Line, Col: k.Column}, "map keys must be scalars")
			}
			if n.has(k.Value) {
				return nil, errorf(ErrCodeMalformed, ir.Loc{File: file, Line: k.Line, Col: k.Column}, "duplicate key %q", k.Value)
			}
			val, err := fromYAML(file, v)
			if err != nil {
				return nil, err
			}
			n.keys = append(n.keys, k.Value)
			n.vals = append(n.vals, val)
		}
		return n, nil
	case yaml.SequenceNode:
		n := &node{kind: listNode, loc: loc}
		for _, item := range y.Content {
			v, err := fromYAML(file, item)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, v)
		}
		return n, nil
	case yaml.ScalarNode:
		return yamlScalar(loc, y)
	default:
		return nil, errorf(ErrCodeMalformed, loc, "unsupported YAML node")
	}
}

func yamlScalar(loc ir.Loc, y *yaml.Node) (*node, error) {
	switch y.ShortTag() {
	case "!!int":
		var i int64
		if err := y.Decode(&i); err != nil {
			return nil, errorf(ErrCodeMalformed, loc, "integer %s: %v", y.Value, err)
		}
		if i < 0 {
			return nil, errorf(ErrCodeMalformed, loc, "negative integer %d: integers are natural numbers", i)
		}
		return &node{kind: intNode, loc: loc, i: i}, nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, errorf(ErrCodeMalformed, loc, "boolean %s: %v", y.Value, err)
		}
		return &node{kind: boolNode, loc: loc, b: b}, nil
	case "!!null":
		return &node{kind: nullNode, loc: loc}, nil
	case "!!str":
		return &node{kind: strNode, loc: loc, s: y.Value}, nil
	case "!!float":
		return nil, errorf(ErrCodeMalformed, loc, "floating-point number %s: only natural numbers are supported", y.Value)
	default:
		return nil, errorf(ErrCodeMalformed, loc, "unsupported scalar tag %s", y.ShortTag())
	}
}

func cueLoc(v cue.Value) ir.Loc {
	pos := v.Pos()
	if !pos.IsValid() {
		return ir.Loc{}
	}
	return ir.Loc{File: pos.Filename(), Line: pos.Line(), Col: pos.Column()}
}

func fromCUE(v cue.Value) (*node, error) {
	loc := cueLoc(v)
	if err := v.Err(); err != nil {
		return nil, errorf(ErrCodeSyntax, loc, "%v", err)
	}
	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, errorf(ErrCodeSyntax, loc, "%v", err)
		}
		n := &node{kind: mapNode, loc: loc}
		for iter.Next() {
			val, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			n.keys = append(n.keys, iter.Label())
			n.vals = append(n.vals, val)
		}
		return n, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, errorf(ErrCodeSyntax, loc, "%v", err)
		}
		n := &node{kind: listNode, loc: loc}
		for iter.Next() {
			item, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, item)
		}
		return n, nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, errorf(ErrCodeMalformed, loc, "integer: %v", err)
		}
		if i < 0 {
			return nil, errorf(ErrCodeMalformed, loc, "negative integer %d: integers are natural numbers", i)
		}
		return &node{kind: intNode, loc: loc, i: i}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, errorf(ErrCodeMalformed, loc, "boolean: %v", err)
		}
		return &node{kind: boolNode, loc: loc, b: b}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, errorf(ErrCodeMalformed, loc, "string: %v", err)
		}
		return &node{kind: strNode, loc: loc, s: s}, nil
	case cue.NullKind:
		return &node{kind: nullNode, loc: loc}, nil
	case cue.BottomKind:
		return nil, errorf(ErrCodeMalformed, loc, "value is not concrete")
	default:
		return nil, errorf(ErrCodeMalformed, loc, "unsupported CUE value of kind %s", v.Kind())
	}
}
