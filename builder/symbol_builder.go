// Package builder implements the first pass of the graph-construction
// pipeline: a depth-first walk that populates a symtab.Table from a file's
// syntax tree.
package builder

import (
	lua "github.com/viant/luacpg/ast"
	"github.com/viant/luacpg/symtab"
)

// pendingParam is a parameter identifier waiting to be bound into the
// scope of the function's inner block, which is entered only after the
// function_declaration node itself has been walked.
type pendingParam struct {
	name              string
	astNodeID         uintptr
	startByte, endByte uint32
}

// Builder runs the first pass over a single file's AST.
type Builder struct {
	table *symtab.Table
	stack *symtab.ScopeStack

	// params queues parameter identifiers collected from a function's
	// parameter list until the function's block is entered.
	params []pendingParam
}

// New creates a Builder that writes into table for the given worker and
// file.
func New(workerID, filePath string, table *symtab.Table) *Builder {
	return &Builder{
		table: table,
		stack: symtab.NewScopeStack(workerID, filePath, table),
	}
}

// Walk performs the first pass pre-order over root.
func (b *Builder) Walk(root lua.Node) {
	b.walk(root)
}

func (b *Builder) walk(node lua.Node) {
	pushed := lua.IsScopeIntroducing(node)
	if pushed {
		b.stack.Push(symtab.ScopeIDFor(node.ID()))
	}

	if node.Kind() == "block" {
		b.drainParams()
	}

	switch lua.DeclarationKind(node) {
	case "variable":
		b.declareVariable(node)
	case "function":
		b.declareFunction(node)
	}

	for _, child := range lua.Children(node) {
		b.walk(child)
	}

	if pushed {
		b.stack.Pop()
	}
}

// declareVariable inspects the leftmost child to tell local from global,
// then adds a symbol for every identifier in the variable_list.
func (b *Builder) declareVariable(node lua.Node) {
	kind := symtab.KindGlobalVar
	if node.ChildCount() > 0 && node.Child(0).Kind() == "local" {
		kind = symtab.KindLocalVar
	}

	varList := lua.FirstOfKind(node, "variable_list")
	if varList == nil {
		return
	}
	names := lua.AllOfKind(varList, "identifier")
	for _, ident := range names {
		b.stack.Add(ident.Text(), node.ID(), kind, node.StartByte(), node.EndByte())
	}

	if len(names) == 1 {
		if module := requireModuleName(node); module != "" {
			b.table.AddImport(names[0].Text(), module)
		}
	}
}

// requireModuleName reports the module name passed to require(...) when
// node's initializer is exactly one such call, or "" otherwise — the
// shape `local m = require("math_utils")` that Scenario D resolves to an
// imports edge.
func requireModuleName(node lua.Node) string {
	var assignment lua.Node
	for _, c := range lua.Children(node) {
		if c.Kind() == "assignment_statement" {
			assignment = c
			break
		}
	}
	if assignment == nil {
		return ""
	}
	call := lua.FirstOfKind(assignment, "function_call")
	if call == nil {
		return ""
	}
	callee := lua.FirstOfKind(call, "identifier")
	if callee == nil || callee.Text() != "require" {
		return ""
	}
	args := lua.AllOfKind(call, "string")
	if len(args) != 1 {
		return ""
	}
	return unquoteLuaString(args[0].Text())
}

// unquoteLuaString strips the single or double quotes tree-sitter-lua
// includes in a string node's Text().
func unquoteLuaString(raw string) string {
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

// declareFunction adds a symbol for the function's leading identifier (for
// a dotted name such as obj.method, only the leftmost identifier "obj" is
// bound) and queues its parameters to be bound into the inner block's
// scope.
func (b *Builder) declareFunction(node lua.Node) {
	name := lua.FirstOfKind(node, "identifier")
	if name == nil {
		return
	}
	b.stack.Add(name.Text(), node.ID(), symtab.KindFunction, node.StartByte(), node.EndByte())

	params := lua.FirstOfKind(node, "parameters")
	if params == nil {
		return
	}
	for _, ident := range lua.AllOfKind(params, "identifier") {
		b.params = append(b.params, pendingParam{
			name:      ident.Text(),
			astNodeID: ident.ID(),
			startByte: ident.StartByte(),
			endByte:   ident.EndByte(),
		})
	}
}

// drainParams binds every queued parameter into the scope just pushed for
// the current block, as local_var symbols.
func (b *Builder) drainParams() {
	if len(b.params) == 0 {
		return
	}
	for _, p := range b.params {
		b.stack.Add(p.name, p.astNodeID, symtab.KindLocalVar, p.startByte, p.endByte)
	}
	b.params = b.params[:0]
}
