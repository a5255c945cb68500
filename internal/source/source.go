// Package source is the parser adapter (C1): it turns source text into an
// annotated syntax tree with byte offsets, using tree-sitter's TypeScript
// grammar as the concrete stand-in for the "curly-brace,
// statically-analyzable language" the engine targets. Everything above this
// package talks in byte offsets, never in tree-sitter's own types directly.
package source

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Unit is a parsed source file: the tree plus the text it was parsed from.
// It owns byte offsets for every node by construction (tree-sitter nodes are
// already byte-ranged; Unit just keeps the source bytes alongside the tree
// so callers never have to thread them through separately).
type Unit struct {
	Source []byte
	tree   *sitter.Tree
}

// Root returns the root node of the parsed unit.
func (u *Unit) Root() *Node {
	if u.tree == nil {
		return nil
	}
	return wrap(u.tree.RootNode(), u.Source)
}

// Close releases the underlying tree-sitter tree.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
	}
}

// ParseFailedError indicates the source did not parse cleanly. A file whose
// parse fails is never rewritten.
type ParseFailedError struct {
	Err error
}

func (e *ParseFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse failed: %v", e.Err)
	}
	return "parse failed"
}

func (e *ParseFailedError) Unwrap() error { return e.Err }

// Parse parses src and returns the annotated unit. It fails with
// *ParseFailedError if the tree-sitter parser reports the result contains
// a syntax error anywhere, since the engine must never rewrite code whose
// parse failed.
func Parse(ctx context.Context, src []byte) (*Unit, error) {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseFailedError{Err: err}
	}
	if tree == nil {
		return nil, &ParseFailedError{Err: fmt.Errorf("nil parse tree")}
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, &ParseFailedError{Err: fmt.Errorf("syntax error in source")}
	}

	return &Unit{Source: src, tree: tree}, nil
}

// Node is a thin, byte-offset-first view over a tree-sitter node. Core
// components (C2-C9) only ever see this type, never *sitter.Node directly,
// so that a future re-targeting of the parser adapter (a different grammar,
// or a different concrete parsing library entirely) never touches C2-C9.
type Node struct {
	n      *sitter.Node
	source []byte
}

func wrap(n *sitter.Node, source []byte) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n, source: source}
}

// Kind is the grammar's node type, e.g. "if_statement", "ternary_expression".
func (nd *Node) Kind() string { return nd.n.Type() }

// Offset is the byte offset of the node's first byte.
func (nd *Node) Offset() int { return int(nd.n.StartByte()) }

// End is the byte offset one past the node's last byte.
func (nd *Node) End() int { return int(nd.n.EndByte()) }

// Length is End - Offset.
func (nd *Node) Length() int { return nd.End() - nd.Offset() }

// Text returns the node's source text.
func (nd *Node) Text() string { return nd.n.Content(nd.source) }

// Parent returns the node's parent, or nil at the root.
func (nd *Node) Parent() *Node { return wrap(nd.n.Parent(), nd.source) }

// ChildCount returns the number of children, named and anonymous.
func (nd *Node) ChildCount() int { return int(nd.n.ChildCount()) }

// Child returns the i'th child (named or anonymous).
func (nd *Node) Child(i int) *Node { return wrap(nd.n.Child(i), nd.source) }

// NamedChildCount returns the number of named children.
func (nd *Node) NamedChildCount() int { return int(nd.n.NamedChildCount()) }

// NamedChild returns the i'th named child.
func (nd *Node) NamedChild(i int) *Node { return wrap(nd.n.NamedChild(i), nd.source) }

// Field returns the child with the given grammar field name, or nil.
func (nd *Node) Field(name string) *Node { return wrap(nd.n.ChildByFieldName(name), nd.source) }

// Contains reports whether other's byte range is inside (or equal to) nd's.
func (nd *Node) Contains(other *Node) bool {
	return nd.Offset() <= other.Offset() && other.End() <= nd.End()
}

// Walk calls fn for every node in the subtree rooted at n, pre-order,
// passing the current ancestor stack (innermost last). Returning false from
// fn skips that node's children but continues the walk.
func Walk(n *Node, fn func(node *Node, ancestors []*Node) bool) {
	walk(n, nil, fn)
}

func walk(n *Node, ancestors []*Node, fn func(node *Node, ancestors []*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n, ancestors) {
		return
	}
	next := append(append([]*Node{}, ancestors...), n)
	for i := 0; i < n.ChildCount(); i++ {
		walk(n.Child(i), next, fn)
	}
}
