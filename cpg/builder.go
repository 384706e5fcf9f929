// Package cpg implements the second pass of the graph-construction
// pipeline: given a file's syntax tree and the symbol table the first pass
// built for it, synthesize the knowledge layer — the typed nodes and edges
// that make declarations, references, calls and control flow queryable
// independently of concrete syntax.
package cpg

import (
	lua "github.com/viant/luacpg/ast"
	"github.com/viant/luacpg/store"
	"github.com/viant/luacpg/symtab"
)

// functionCandidate records enough about an emitted function knowledge
// node to reclassify it once the whole file has been walked.
type functionCandidate struct {
	key      string
	hasLocal bool
	topLevel bool
}

// Builder runs the second pass over a single file's AST, consulting the
// symbol table the first pass already built for it.
type Builder struct {
	store *store.Store
	table *symtab.Table

	scopeStack   []string
	contextStack []Context

	// astIDToKey maps a declaring AST node's grammar identity to the
	// knowledge node key it produced, so reference nodes can resolve a
	// symtab.Symbol (which only carries the AST id) to a graph edge
	// target.
	astIDToKey map[uintptr]string

	functionCandidates []functionCandidate
	blockQueue         []blockWork

	// moduleKeys dedupes "module" knowledge nodes by module name, so a
	// second require of the same module reuses the first node (Scenario D).
	moduleKeys map[string]string

	rootChunkKey string
}

// New creates a Builder writing into s, resolving names against table.
func New(table *symtab.Table, s *store.Store) *Builder {
	return &Builder{
		store:      s,
		table:      table,
		astIDToKey: map[uintptr]string{},
		moduleKeys: map[string]string{},
	}
}

// Build synthesizes the knowledge layer for root and returns the key of
// its chunk knowledge node.
func (b *Builder) Build(root lua.Node) string {
	b.walk(root, true)
	b.drainBlocks()
	b.reclassifyFunctions()
	return b.rootChunkKey
}

func (b *Builder) currentScope() string {
	if len(b.scopeStack) == 0 {
		return ""
	}
	return b.scopeStack[len(b.scopeStack)-1]
}

func (b *Builder) pushScopeNode(node lua.Node) {
	b.scopeStack = append(b.scopeStack, symtab.ScopeIDFor(node.ID()))
}

func (b *Builder) pushScopeID(id string) {
	b.scopeStack = append(b.scopeStack, id)
}

func (b *Builder) popScope() {
	if len(b.scopeStack) > 0 {
		b.scopeStack = b.scopeStack[:len(b.scopeStack)-1]
	}
}

// walk is the main traversal. It stops short of recursing into a block's
// contents: those are handled by the fixed-point block-discovery loop in
// blocks.go, which shares every emission helper defined here.
func (b *Builder) walk(node lua.Node, topLevel bool) {
	pushed := lua.IsScopeIntroducing(node)
	if pushed {
		b.pushScopeNode(node)
	}

	switch node.Kind() {
	case "chunk":
		key := b.emitGeneric(node, "chunk")
		b.rootChunkKey = key
		b.pushContext(Context{Global, key})
		for _, c := range lua.Children(node) {
			b.walk(c, true)
		}
		b.popContext()

	case "block":
		key := b.emitGeneric(node, "block")
		b.applyContextLink(key)
		b.enqueueBlock(node, key)

	case "function_declaration":
		b.emitFunctionDeclaration(node, topLevel)

	case "variable_declaration":
		b.emitVariableDeclaration(node)

	case "class_declaration":
		key := b.emitGeneric(node, "class_declaration")
		b.applyContextLink(key)
		if b.rootChunkKey != "" {
			b.addEdge(b.rootChunkKey, key, "contains")
		}
		for _, c := range lua.Children(node) {
			b.walk(c, topLevel)
		}

	case "identifier":
		b.handleIdentifier(node)

	case "expression_list":
		key := b.emitGeneric(node, "expression_list")
		b.applyContextLink(key)
		b.pushContext(Context{Expression, key})
		for _, c := range lua.Children(node) {
			b.walk(c, topLevel)
		}
		b.popContext()

	case "function_call":
		b.handleFunctionCall(node)

	default:
		for _, c := range lua.Children(node) {
			b.walk(c, topLevel)
		}
	}

	if pushed {
		b.popScope()
	}
}

func (b *Builder) addEdge(from, to, relation string) {
	_ = b.store.InsertKnowledgeEdge(store.KnowledgeEdge{
		Key:      b.store.NextID(),
		From:     from,
		To:       to,
		Relation: relation,
	})
}

func (b *Builder) newNode(node lua.Node, kind string) store.KnowledgeNode {
	return store.KnowledgeNode{
		Key:        b.store.NextID(),
		Kind:       kind,
		Text:       node.Text(),
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
		GrammarID:  node.ID(),
		Discovered: true,
		Properties: map[string]any{},
	}
}

// emitGeneric inserts a knowledge node for node under kind and returns its
// key. The insert cannot fail: Key is always populated from NextID.
func (b *Builder) emitGeneric(node lua.Node, kind string) string {
	n := b.newNode(node, kind)
	_ = b.store.InsertKnowledgeNode(n)
	return n.Key
}

func (b *Builder) updateInitialized(key string, initialized bool) {
	b.store.UpdateKnowledgeNode(key, func(n store.KnowledgeNode) store.KnowledgeNode {
		if n.Properties == nil {
			n.Properties = map[string]any{}
		}
		n.Properties["initialized"] = initialized
		return n
	})
}

// directChild returns node's first direct child of the given kind,
// without descending further, for locating a production's well-known
// sub-parts (a function's "parameters" and "block", a declaration's
// "assignment_statement").
func directChild(node lua.Node, kind string) lua.Node {
	for _, c := range lua.Children(node) {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// emitFunctionDeclaration emits the function's own knowledge node, a
// contains edge from the file's root chunk, one parameter knowledge node
// plus has_parameter edge per parameter identifier, and recurses into the
// function's own block. topLevel distinguishes a declaration reached
// directly off the chunk from one discovered nested inside a block, which
// the post-pass reclassification needs to tell local_function apart from
// global_function.
func (b *Builder) emitFunctionDeclaration(node lua.Node, topLevel bool) string {
	key := b.emitGeneric(node, "function")
	b.astIDToKey[node.ID()] = key

	if b.rootChunkKey != "" {
		b.addEdge(b.rootChunkKey, key, "contains")
	}
	b.applyContextLink(key)

	hasLocal := node.ChildCount() > 0 && node.Child(0).Kind() == "local"
	b.functionCandidates = append(b.functionCandidates, functionCandidate{
		key:      key,
		hasLocal: hasLocal,
		topLevel: topLevel,
	})

	if params := directChild(node, "parameters"); params != nil {
		for _, ident := range lua.AllOfKind(params, "identifier") {
			paramNode := b.newNode(ident, "parameter")
			_ = b.store.InsertKnowledgeNode(paramNode)
			b.astIDToKey[ident.ID()] = paramNode.Key
			b.addEdge(key, paramNode.Key, "has_parameter")
		}
	}

	if block := directChild(node, "block"); block != nil {
		b.walk(block, topLevel)
	}
	return key
}

// emitVariableDeclaration emits the declaration's own knowledge node, a
// contains edge from the root chunk, a declares edge to an identifier node
// per declared name, and — when the declaration carries an initializer —
// walks that initializer under a VarDecl context so identifiers inside it
// pick up an initializes edge back to this declaration on top of their
// ordinary refers_to resolution.
func (b *Builder) emitVariableDeclaration(node lua.Node) string {
	assignment := directChild(node, "assignment_statement")

	key := b.emitGeneric(node, "variable_declaration")
	b.astIDToKey[node.ID()] = key
	if assignment != nil {
		b.updateInitialized(key, true)
	}

	if b.rootChunkKey != "" {
		b.addEdge(b.rootChunkKey, key, "contains")
	}
	b.applyContextLink(key)

	names := b.emitDeclaredIdentifiers(node, key)
	b.linkRequireImport(key, names)

	if assignment != nil {
		b.pushContext(Context{VarDecl, key})
		b.walk(assignment, true)
		b.popContext()
	}
	return key
}

// linkRequireImport emits (or reuses) a "module" knowledge node and an
// imports edge from key when the declaration binds exactly one name that
// the first pass recorded as bound to a require(...) call — Scenario D. A
// second require of the same module name reuses the existing node rather
// than creating a duplicate.
func (b *Builder) linkRequireImport(key string, names []string) {
	if len(names) != 1 {
		return
	}
	module, ok := b.table.Imports[names[0]]
	if !ok {
		return
	}
	moduleKey, ok := b.moduleKeys[module]
	if !ok {
		moduleKey = b.store.NextID()
		_ = b.store.InsertKnowledgeNode(store.KnowledgeNode{
			Key:        moduleKey,
			Kind:       "module",
			Text:       module,
			Discovered: true,
			Properties: map[string]any{},
		})
		b.moduleKeys[module] = moduleKey
	}
	b.addEdge(key, moduleKey, "imports")
}

// emitDeclaredIdentifiers emits one identifier knowledge node per name in
// node's variable_list, each linked from declKey via declares, and
// returns the declared names in order. These are handled directly rather
// than through the generic identifier dispatch because a declaration-side
// name is being bound, not referenced: it must not also pick up a
// refers_to edge back to its own declaration.
func (b *Builder) emitDeclaredIdentifiers(node lua.Node, declKey string) []string {
	varList := lua.FirstOfKind(node, "variable_list")
	if varList == nil {
		return nil
	}
	idents := lua.AllOfKind(varList, "identifier")
	names := make([]string, 0, len(idents))
	for _, ident := range idents {
		identNode := b.newNode(ident, "identifier")
		_ = b.store.InsertKnowledgeNode(identNode)
		b.addEdge(declKey, identNode.Key, "declares")
		names = append(names, ident.Text())
	}
	return names
}

// handleIdentifier emits an identifier knowledge node, applies whatever
// context-dependent edge the enclosing context calls for, and resolves
// the identifier's text against the current scope for a refers_to edge.
func (b *Builder) handleIdentifier(node lua.Node) string {
	key := b.emitGeneric(node, "identifier")
	b.applyContextLink(key)

	sym, ok := b.table.LookupByName(b.currentScope(), node.Text())
	if !ok {
		return key
	}
	if declKey, ok := b.astIDToKey[sym.ASTNodeID]; ok {
		b.addEdge(key, declKey, "refers_to")
	}
	return key
}

// handleFunctionCall emits the call's own knowledge node, a defines edge
// from the resolved declaration when the callee name is bound, and walks
// the call's remaining children (its arguments) under an Arguments
// context so each resolves to a has_argument edge back to this call.
func (b *Builder) handleFunctionCall(node lua.Node) string {
	key := b.emitGeneric(node, "function_call")
	b.applyContextLink(key)
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

func (b *Builder) linkCallee(node lua.Node, callKey string) {
	callee := lua.FirstOfKind(node, "identifier")
	if callee == nil {
		return
	}
	sym, ok := b.table.LookupByName(b.currentScope(), callee.Text())
	if !ok {
		return
	}
	if declKey, ok := b.astIDToKey[sym.ASTNodeID]; ok {
		b.addEdge(declKey, callKey, "defines")
	}
}

// reclassifyFunctions runs once the whole file has been walked: a
// declaration with a leading local keyword becomes local_function;
// otherwise, one declared directly under the chunk becomes
// global_function. Anything else (a non-local function nested inside a
// block) is left under the generic function kind.
func (b *Builder) reclassifyFunctions() {
	for _, fc := range b.functionCandidates {
		var kind string
		switch {
		case fc.hasLocal:
			kind = "local_function"
		case fc.topLevel:
			kind = "global_function"
		default:
			continue
		}
		b.store.UpdateKnowledgeNode(fc.key, func(n store.KnowledgeNode) store.KnowledgeNode {
			n.Kind = kind
			return n
		})
	}
}
