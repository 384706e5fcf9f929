package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRequiresKey(t *testing.T) {
	s := New()
	err := s.InsertASTNode(ASTNode{Kind: "chunk"})
	assert.Error(t, err)

	err = s.InsertKnowledgeNode(KnowledgeNode{Kind: "chunk"})
	assert.Error(t, err)

	err = s.InsertKnowledgeEdge(KnowledgeEdge{From: "a", To: "b"})
	assert.Error(t, err)
}

func TestPathIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertASTNode(ASTNode{Key: "1", Kind: "file", Path: "src/main.lua"}))

	key, ok := s.IDFromPath("src/main.lua")
	require.True(t, ok)
	assert.Equal(t, "1", key)

	_, ok = s.IDFromPath("missing.lua")
	assert.False(t, ok)
}

func TestNextIDMonotonic(t *testing.T) {
	s := New()
	a := s.NextID()
	b := s.NextID()
	assert.NotEqual(t, a, b)
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
}

func TestChildrenAndOutboundInbound(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertKnowledgeNode(KnowledgeNode{Key: "chunk-1", Kind: "chunk"}))
	require.NoError(t, s.InsertKnowledgeNode(KnowledgeNode{Key: "fn-1", Kind: "function"}))
	require.NoError(t, s.InsertKnowledgeEdge(KnowledgeEdge{Key: "e1", From: "chunk-1", To: "fn-1", Relation: "contains"}))

	out := s.OutboundKnowledge("chunk-1")
	require.Len(t, out, 1)
	assert.Equal(t, "fn-1", out[0].To)

	in := s.InboundKnowledge("fn-1")
	require.Len(t, in, 1)
	assert.Equal(t, "chunk-1", in[0].From)

	children := s.ChildrenKnowledge("chunk-1", "contains")
	require.Len(t, children, 1)
	assert.Equal(t, "fn-1", children[0].Key)

	assert.Empty(t, s.ChildrenKnowledge("chunk-1", "declares"))
}

func TestUpdateKnowledgeNode(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertKnowledgeNode(KnowledgeNode{Key: "v1", Kind: "variable_declaration", Properties: map[string]any{}}))

	ok := s.UpdateKnowledgeNode("v1", func(n KnowledgeNode) KnowledgeNode {
		n.Properties["initialized"] = true
		return n
	})
	require.True(t, ok)

	n, _ := s.GetKnowledgeNode("v1")
	assert.Equal(t, true, n.Properties["initialized"])

	assert.False(t, s.UpdateKnowledgeNode("missing", func(n KnowledgeNode) KnowledgeNode { return n }))
}
