// Package loader turns program documents into ir terms.
//
// A program document is a tree of single-key maps, each naming the kind of
// the term it encodes:
//
//	prog:
//	  - def: {name: two, value: {succ: {succ: 0}}}
//	  - print: {ref: two}
//
// YAML and JSON documents are read with gopkg.in/yaml.v3, CUE documents
// with cuelang.org/go. Both are first converted to a small format-neutral
// tree carrying source positions, then decoded by one set of rules, so
// every format accepts exactly the same programs.
//
// The loader builds the declaration table for the program and attaches
// source locations to every node, so evaluation errors can point back to
// the document.
package loader
