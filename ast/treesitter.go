package ast

import (
	"context"
	"fmt"
	"unicode/utf8"
	"unsafe"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// Parse parses Lua source into the root Node of its concrete syntax tree.
func Parse(ctx context.Context, src []byte) (Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lua.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lua source: %w", err)
	}
	return newTSNode(tree.RootNode(), src, nil), nil
}

// tsNode adapts *sitter.Node to the ast.Node interface. Children and parent
// are memoized on first access so repeated traversals of the same logical
// AST node always observe the same *tsNode pointer; ID() uses that pointer
// as the stable grammar-internal identity the second pass relies on to
// rebuild edges after the first pass.
type tsNode struct {
	node   *sitter.Node
	src    []byte
	parent *tsNode

	childrenOnce bool
	children     []*tsNode
}

func newTSNode(n *sitter.Node, src []byte, parent *tsNode) *tsNode {
	if n == nil {
		return nil
	}
	return &tsNode{node: n, src: src, parent: parent}
}

func (n *tsNode) Kind() string { return n.node.Type() }

func (n *tsNode) Text() string {
	raw := n.node.Content(n.src)
	if utf8.ValidString(raw) {
		return raw
	}
	return latin1Fallback([]byte(raw))
}

func (n *tsNode) StartByte() uint32 { return n.node.StartByte() }
func (n *tsNode) EndByte() uint32   { return n.node.EndByte() }

// ID returns this wrapper's own address. Because children and parent are
// memoized, the same logical AST node always yields the same *tsNode, so
// this address is a valid stable identity for the duration of one parse.
func (n *tsNode) ID() uintptr {
	return uintptr(unsafe.Pointer(n))
}

func (n *tsNode) ChildCount() int {
	n.ensureChildren()
	return len(n.children)
}

func (n *tsNode) Child(i int) Node {
	n.ensureChildren()
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *tsNode) ensureChildren() {
	if n.childrenOnce {
		return
	}
	n.childrenOnce = true
	count := int(n.node.ChildCount())
	n.children = make([]*tsNode, 0, count)
	for i := 0; i < count; i++ {
		c := n.node.Child(i)
		if c == nil {
			continue
		}
		n.children = append(n.children, newTSNode(c, n.src, n))
	}
}

func (n *tsNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// latin1Fallback decodes bytes as Latin-1 when they are not valid UTF-8, so
// a source file in an unexpected encoding still yields readable text
// instead of a parse error.
func latin1Fallback(raw []byte) string {
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}
