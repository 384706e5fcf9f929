package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// local a = 5  -> chunk(variable_declaration(local, variable_list(identifier "a")))
func buildVarDecl() *FakeNode {
	ident := NewFake(1, "identifier", "a", 6, 7)
	varList := NewFake(2, "variable_list", "a", 6, 7, ident)
	local := NewFake(3, "local", "local", 0, 5)
	decl := NewFake(4, "variable_declaration", "local a = 5", 0, 11, local, varList)
	return NewFake(5, "chunk", "local a = 5", 0, 11, decl)
}

func TestFirstOfKind(t *testing.T) {
	root := buildVarDecl()
	found := FirstOfKind(root, "identifier")
	require.NotNil(t, found)
	assert.Equal(t, "a", found.Text())
}

func TestFirstOfKind_Missing(t *testing.T) {
	root := buildVarDecl()
	assert.Nil(t, FirstOfKind(root, "function_call"))
}

func TestAllOfKind(t *testing.T) {
	ident1 := NewFake(1, "identifier", "a", 0, 1)
	ident2 := NewFake(2, "identifier", "b", 2, 3)
	list := NewFake(3, "variable_list", "a, b", 0, 3, ident1, ident2)
	all := AllOfKind(list, "identifier")
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Text())
	assert.Equal(t, "b", all[1].Text())
}

func TestAncestorOfKind(t *testing.T) {
	root := buildVarDecl()
	ident := FirstOfKind(root, "identifier")
	ancestor, dist := AncestorOfKind(ident, "variable_declaration")
	require.NotNil(t, ancestor)
	assert.Equal(t, "variable_declaration", ancestor.Kind())
	assert.Equal(t, 2, dist)

	ancestor, dist = AncestorOfKind(ident, "function_call")
	assert.Nil(t, ancestor)
	assert.Equal(t, 0, dist)
}

func TestIsScopeIntroducing(t *testing.T) {
	chunk := NewFake(1, "chunk", "", 0, 0)
	fn := NewFake(2, "function_declaration", "", 0, 0)
	block := NewFake(3, "block", "", 0, 0)

	assert.True(t, IsScopeIntroducing(chunk))
	assert.True(t, IsScopeIntroducing(block))
	assert.False(t, IsScopeIntroducing(fn), "a function's own node must not introduce a scope; its block child does")
}

func TestIsKnowledgeNode(t *testing.T) {
	assert.True(t, IsKnowledgeNode(NewFake(1, "function_declaration", "", 0, 0)))
	assert.True(t, IsKnowledgeNode(NewFake(1, "chunk", "", 0, 0)))
	assert.False(t, IsKnowledgeNode(NewFake(1, "identifier", "", 0, 0)))
}

func TestDeclarationKind(t *testing.T) {
	assert.Equal(t, "variable", DeclarationKind(NewFake(1, "variable_declaration", "", 0, 0)))
	assert.Equal(t, "function", DeclarationKind(NewFake(1, "function_declaration", "", 0, 0)))
	assert.Equal(t, "block", DeclarationKind(NewFake(1, "block", "", 0, 0)))
	assert.Equal(t, "", DeclarationKind(NewFake(1, "identifier", "", 0, 0)))
}

func TestReferenceKind(t *testing.T) {
	assert.Equal(t, "ident", ReferenceKind(NewFake(1, "identifier", "", 0, 0)))
	assert.Equal(t, "call", ReferenceKind(NewFake(1, "function_call", "", 0, 0)))
	assert.Equal(t, "exp_list", ReferenceKind(NewFake(1, "expression_list", "", 0, 0)))
	assert.Equal(t, "", ReferenceKind(NewFake(1, "chunk", "", 0, 0)))
}
