package cpg

import (
	lua "github.com/viant/luacpg/ast"
	"github.com/viant/luacpg/store"
	"github.com/viant/luacpg/symtab"
)

// blockWork is one entry in the fixed-point block-discovery queue: a block
// AST node paired with the knowledge node key already emitted for it.
type blockWork struct {
	node lua.Node
	key  string
}

func (b *Builder) enqueueBlock(node lua.Node, key string) {
	b.blockQueue = append(b.blockQueue, blockWork{node: node, key: key})
}

// drainBlocks processes every discovered-unprocessed block until none
// remain. Processing a block can discover further blocks (a nested
// control structure's own block), which are appended to the same queue
// rather than recursed into, keeping traversal depth independent of
// nesting depth.
func (b *Builder) drainBlocks() {
	for len(b.blockQueue) > 0 {
		work := b.blockQueue[0]
		b.blockQueue = b.blockQueue[1:]
		b.processBlock(work)
	}
}

// processBlock inspects work's direct statement children without
// crossing into any nested block, handles each per its kind, and marks
// the block processed.
func (b *Builder) processBlock(work blockWork) {
	b.pushScopeID(symtab.ScopeIDFor(work.node.ID()))

	for _, child := range lua.Children(work.node) {
		switch child.Kind() {
		case "return_statement":
			b.emitReturnStatement(child, work.key)
		case "variable_declaration":
			b.emitNestedVariableDeclaration(child, work.key)
		case "function_declaration":
			key := b.emitFunctionDeclaration(child, false)
			b.addEdge(work.key, key, "contains")
		case "function_call":
			b.emitNestedFunctionCall(child, work.key)
		case "if_statement":
			b.emitIfStatement(child, work.key)
		case "while_statement", "for_statement", "repeat_statement", "do_statement":
			b.emitLoopOrDo(child, work.key)
		}
	}

	b.popScope()

	b.store.UpdateKnowledgeNode(work.key, func(n store.KnowledgeNode) store.KnowledgeNode {
		n.Processed = true
		return n
	})
}

// emitReturnStatement emits a laststat_return node, linked from the
// owning block via executes, then walks its expression(s) normally so
// referenced identifiers resolve refers_to as usual.
func (b *Builder) emitReturnStatement(node lua.Node, blockKey string) string {
	key := b.emitGeneric(node, "laststat_return")
	b.addEdge(blockKey, key, "executes")
	for _, c := range lua.Children(node) {
		b.walk(c, true)
	}
	return key
}

// emitNestedVariableDeclaration mirrors emitVariableDeclaration for a
// declaration found directly inside a block's statement list, producing a
// local_assignment knowledge node instead of variable_declaration and
// linking it from the block via contains rather than from the file's
// root chunk.
func (b *Builder) emitNestedVariableDeclaration(node lua.Node, blockKey string) string {
	assignment := directChild(node, "assignment_statement")

	key := b.emitGeneric(node, "local_assignment")
	b.astIDToKey[node.ID()] = key
	if assignment != nil {
		b.updateInitialized(key, true)
	}
	b.addEdge(blockKey, key, "contains")

	names := b.emitDeclaredIdentifiers(node, key)
	b.linkRequireImport(key, names)

	if assignment != nil {
		b.pushContext(Context{VarDecl, key})
		b.walk(assignment, true)
		b.popContext()
	}
	return key
}

// emitNestedFunctionCall mirrors handleFunctionCall for a call appearing
// as a bare statement inside a block, additionally linking it from the
// owning block via calls — distinct from the defines edge a resolved
// declaration gets regardless of where its call sites appear.
func (b *Builder) emitNestedFunctionCall(node lua.Node, blockKey string) string {
	key := b.emitGeneric(node, "function_call")
	b.addEdge(blockKey, key, "calls")
	b.linkCallee(node, key)

	callee := lua.FirstOfKind(node, "identifier")
	b.pushContext(Context{Arguments, key})
	for _, c := range lua.Children(node) {
		if c == callee {
			continue
		}
		b.walk(c, true)
	}
	b.popContext()
	return key
}

// emitIfStatement emits a CONTROL_STRUCTURE-vocabulary if_statement node
// linked from the owning block via executes, a has_block edge to its own
// "then" block, and one executes edge per elseif/else branch.
func (b *Builder) emitIfStatement(node lua.Node, blockKey string) string {
	key := b.emitGeneric(node, "if_statement")
	b.addEdge(blockKey, key, "executes")
	b.attachBlock(node, key)

	for _, c := range lua.Children(node) {
		switch c.Kind() {
		case "elseif_statement":
			b.emitBranch(c, key, "elseif_statement")
		case "else_statement":
			b.emitBranch(c, key, "else_statement")
		}
	}
	return key
}

func (b *Builder) emitBranch(node lua.Node, ifKey string, kind string) string {
	key := b.emitGeneric(node, kind)
	b.addEdge(ifKey, key, "executes")
	b.attachBlock(node, key)
	return key
}

// emitLoopOrDo handles while/for/repeat/do statements uniformly: a
// knowledge node under the statement's own grammar kind, an executes edge
// from the owning block, and a has_block edge to its inner block.
func (b *Builder) emitLoopOrDo(node lua.Node, blockKey string) string {
	key := b.emitGeneric(node, node.Kind())
	b.addEdge(blockKey, key, "executes")
	b.attachBlock(node, key)
	return key
}

// attachBlock emits a knowledge node for node's direct "block" child, a
// has_block edge from ownerKey to it, and enqueues it for discovery.
func (b *Builder) attachBlock(node lua.Node, ownerKey string) {
	blk := directChild(node, "block")
	if blk == nil {
		return
	}
	blkKey := b.emitGeneric(blk, "block")
	b.addEdge(ownerKey, blkKey, "has_block")
	b.enqueueBlock(blk, blkKey)
}
