package ast

// FirstOfKind returns the depth-first, leftmost descendant (root included)
// whose Kind equals k, or nil if none exists.
func FirstOfKind(root Node, k string) Node {
	if root == nil {
		return nil
	}
	if root.Kind() == k {
		return root
	}
	for _, child := range Children(root) {
		if found := FirstOfKind(child, k); found != nil {
			return found
		}
	}
	return nil
}

// AllOfKind returns every descendant (root included) whose Kind equals k,
// in pre-order.
func AllOfKind(root Node, k string) []Node {
	if root == nil {
		return nil
	}
	var out []Node
	if root.Kind() == k {
		out = append(out, root)
	}
	for _, child := range Children(root) {
		out = append(out, AllOfKind(child, k)...)
	}
	return out
}

// AncestorOfKind walks proper ancestors of node looking for one whose Kind
// equals k, returning it together with the hop distance (1 for the
// immediate parent). Returns (nil, 0) if no such ancestor exists.
func AncestorOfKind(node Node, k string) (Node, int) {
	if node == nil {
		return nil, 0
	}
	dist := 0
	cur := node.Parent()
	for cur != nil {
		dist++
		if cur.Kind() == k {
			return cur, dist
		}
		cur = cur.Parent()
	}
	return nil, 0
}

// scopeKinds are the grammar productions that introduce a lexical scope.
// Notably a function's own node is absent: its block child is what opens
// the scope, avoiding double-scoping a function and its body.
var scopeKinds = map[string]bool{
	"chunk":          true,
	"block":          true,
	"do_statement":   true,
	"while_statement": true,
	"for_statement":  true,
	"if_statement":   true,
}

// IsScopeIntroducing reports whether node opens a new lexical scope.
func IsScopeIntroducing(node Node) bool {
	if node == nil {
		return false
	}
	return scopeKinds[node.Kind()]
}

var knowledgeKinds = map[string]bool{
	"function_declaration":  true,
	"variable_declaration":  true,
	"class_declaration":     true,
	"block":                 true,
	"chunk":                 true,
}

// IsKnowledgeNode reports whether node should become (or contribute to) a
// knowledge node during CPG synthesis.
func IsKnowledgeNode(node Node) bool {
	if node == nil {
		return false
	}
	return knowledgeKinds[node.Kind()]
}

var declarationKinds = map[string]string{
	"function_declaration": "function",
	"variable_declaration": "variable",
	"block":                "block",
}

// DeclarationKind returns "function", "variable", "block", or "" when node
// is not a declaration-shaped node.
func DeclarationKind(node Node) string {
	if node == nil {
		return ""
	}
	return declarationKinds[node.Kind()]
}

var referenceKinds = map[string]string{
	"identifier":       "ident",
	"function_call":    "call",
	"expression_list":  "exp_list",
}

// ReferenceKind returns "ident", "call", "exp_list", or "" when node is not
// a reference-shaped node.
func ReferenceKind(node Node) string {
	if node == nil {
		return ""
	}
	return referenceKinds[node.Kind()]
}

// HasSyntaxError reports whether node or any descendant is a tree-sitter
// "ERROR" production — its error-recovery marker for input it could not
// fit to the grammar. Parse never itself returns an error for malformed
// Lua; callers that must reject a malformed file check this instead.
func HasSyntaxError(node Node) bool {
	if node == nil {
		return false
	}
	if node.Kind() == "ERROR" {
		return true
	}
	for _, child := range Children(node) {
		if HasSyntaxError(child) {
			return true
		}
	}
	return false
}
