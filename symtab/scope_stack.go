package symtab

import "strconv"

// ScopeStack is a last-in-first-out stack of scope ids, the mutable
// traversal companion that keeps Table's scope tree in sync with AST
// descent. Push/pop calls must be perfectly balanced with the caller's
// scope-introducing AST nodes.
type ScopeStack struct {
	workerID string
	filePath string
	table    *Table
	stack    []string
}

// NewScopeStack creates a scope stack feeding table for the given file.
func NewScopeStack(workerID, filePath string, table *Table) *ScopeStack {
	return &ScopeStack{workerID: workerID, filePath: filePath, table: table}
}

// ScopeIDFor renders a grammar-internal node identity as a scope id.
func ScopeIDFor(astNodeID uintptr) string {
	return strconv.FormatUint(uint64(astNodeID), 10)
}

// Current returns the id of the top-of-stack scope, or "" if the stack is
// empty.
func (s *ScopeStack) Current() string {
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1]
}

// Push creates a new scope whose parent is the current top, registers it
// in the table, and makes it current.
func (s *ScopeStack) Push(id string) *Scope {
	parent := s.Current()
	scope := newScope(id, parent, len(s.stack) > 0)
	s.table.AddScope(scope)
	s.stack = append(s.stack, id)
	return scope
}

// Pop removes the current scope, returning its id.
func (s *ScopeStack) Pop() string {
	if len(s.stack) == 0 {
		return ""
	}
	id := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return id
}

// Add records a symbol in the current top scope and in the table's export
// surface, following the symbol-creation pass: every declaration is
// treated as potentially exported until import/export refinement lands.
func (s *ScopeStack) Add(name string, astNodeID uintptr, kind Kind, startByte, endByte uint32) Symbol {
	sym := Symbol{
		WorkerID:  s.workerID,
		FilePath:  s.filePath,
		ScopeID:   s.Current(),
		Name:      name,
		Kind:      kind,
		ASTNodeID: astNodeID,
		StartByte: startByte,
		EndByte:   endByte,
	}
	s.table.AddSymbol(sym)
	return sym
}
